package subsystem

import (
	"time"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/dstockhouse/mrfusion/kangaroo"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/ringbuf"
)

// kinematics converts a filtered (speed, rotation) pair into per-channel
// wheel commands. The actual PID/kinematic gains live in the (out of
// scope) controller; this is the minimal differential-drive mixing the
// call-site contract requires so a speed/rotation pair becomes something
// the Kangaroo line protocol can issue.
func kinematics(speedMPS, rotationRadPS float64) (left, right int32) {
	const countsPerMPS = 420.0 / 0.798 // encoder lines per meter, from the units798mm=420lines init command
	const trackWidthM = 0.5
	l := speedMPS - rotationRadPS*trackWidthM/2
	r := speedMPS + rotationRadPS*trackWidthM/2
	return int32(l * countsPerMPS), int32(r * countsPerMPS)
}

// CommandLoop is the C12 main command loop for a subsystem that receives
// guidance-originated commands and drives a Kangaroo motor controller:
// it reads tagged TCP messages from conn, low-pass filters ctls/ctlr,
// issues the resulting wheel commands, requests position readback every
// PositionRequestPeriod iterations, and returns once stop or ctlx
// arrives (or conn errors out).
func CommandLoop(rt *Runtime, conn Conn, motor kangaroo.Port) {
	buf := ringbuf.New()
	speedFilter := NewLowPass(config.Defaults.FilterSize)
	rotFilter := NewLowPass(config.Defaults.FilterSize)

	chunk := make([]byte, 256)
	iteration := 0

	for {
		n, err := conn.Read(chunk)
		if err != nil {
			if rt.Log != nil {
				rt.Log.Log(debuglog.DEBUG, "%s: command conn read error: %v", rt.Name, err)
			}
			return
		}
		if n > 0 {
			buf.AppendMany(chunk[:n])
		}

		if stop := drainCommands(rt, buf, speedFilter, rotFilter, motor); stop {
			return
		}

		if rt.Metrics != nil {
			rt.Metrics.LoopIterations.Inc()
		}

		iteration++
		if iteration%config.Defaults.PositionRequestPeriod == 0 {
			motor.Write(kangaroo.PositionQuery(kangaroo.ChannelLeft))
			motor.Write(kangaroo.PositionQuery(kangaroo.ChannelRight))
		}

		time.Sleep(config.Defaults.MainLoopPeriod)
	}
}

// drainCommands consumes every complete tagged message currently
// buffered, applying ctls/ctlr to the filters and issuing motor speed
// commands. It returns true once a stop or ctlx message has been
// processed, signaling CommandLoop to exit.
func drainCommands(rt *Runtime, buf *ringbuf.Buffer, speedFilter, rotFilter *LowPass, motor kangaroo.Port) bool {
	for {
		if buf.Len() < 4 {
			return false
		}
		var tagBytes [4]byte
		buf.CopyOut(tagBytes[:], 0)
		tag := mesh.Tag(tagBytes)
		bodySize := tag.BodySize()
		if bodySize < 0 {
			// Unrecognized tag: drop one byte and resync, same discipline
			// as the ASCII/binary frame parsers.
			buf.RemoveFront(1)
			continue
		}
		total := 4 + bodySize
		if buf.Len() < total {
			return false
		}
		msg := make([]byte, total)
		buf.CopyOut(msg, 0)
		buf.RemoveFront(total)

		switch tag {
		case mesh.TagStop, mesh.TagCtlX:
			return true
		case mesh.TagCtlS:
			v, err := mesh.DecodeF64Body(msg[4:])
			if err == nil {
				applySpeed(speedFilter, rotFilter, motor, v, rotFilter.Value())
			}
		case mesh.TagCtlR:
			v, err := mesh.DecodeF64Body(msg[4:])
			if err == nil {
				applySpeed(speedFilter, rotFilter, motor, speedFilter.Value(), v)
			}
		}
	}
}

func applySpeed(speedFilter, rotFilter *LowPass, motor kangaroo.Port, rawSpeed, rawRot float64) {
	speed := speedFilter.Update(rawSpeed)
	rot := rotFilter.Update(rawRot)
	left, right := kinematics(speed, rot)
	motor.Write(kangaroo.SpeedCommand(kangaroo.ChannelLeft, left))
	motor.Write(kangaroo.SpeedCommand(kangaroo.ChannelRight, right))
}
