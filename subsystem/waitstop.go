package subsystem

import (
	"time"

	"github.com/dstockhouse/mrfusion/config"
	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/dstockhouse/mrfusion/ringbuf"
)

// WaitForStop is the main loop for a subsystem that owns no actuator and
// so has nothing to do with ctls/ctlr: it just blocks its main thread
// until guidance sends stop or ctlx, while its reader-thread workers
// keep running in the background. Used by navigation and image-proc.
func WaitForStop(conn Conn) {
	buf := ringbuf.New()
	chunk := make([]byte, 64)
	for {
		n, err := conn.Read(chunk)
		if err != nil {
			return
		}
		if n > 0 {
			buf.AppendMany(chunk[:n])
		}
		for buf.Len() >= 4 {
			var tagBytes [4]byte
			buf.CopyOut(tagBytes[:], 0)
			tag := mesh.Tag(tagBytes)
			if tag == mesh.TagStop || tag == mesh.TagCtlX {
				return
			}
			bodySize := tag.BodySize()
			if bodySize < 0 {
				buf.RemoveFront(1)
				continue
			}
			total := 4 + bodySize
			if buf.Len() < total {
				break
			}
			buf.RemoveFront(total)
		}
		time.Sleep(config.Defaults.MainLoopPeriod)
	}
}
