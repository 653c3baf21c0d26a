package deployharness

import (
	"github.com/dstockhouse/mrfusion/debuglog"
	"github.com/shirou/gopsutil/v3/process"
)

// sampleChildren logs each running child's CPU percent and RSS, giving
// the harness visibility into subsystem health without adding a new
// control channel.
func (h *Harness) sampleChildren() {
	if h.Log == nil {
		return
	}
	for _, c := range h.Children {
		if c.cmd == nil || c.cmd.Process == nil {
			continue
		}
		proc, err := process.NewProcess(int32(c.cmd.Process.Pid))
		if err != nil {
			continue
		}
		cpuPct, err := proc.CPUPercent()
		if err != nil {
			continue
		}
		mem, err := proc.MemoryInfo()
		if err != nil || mem == nil {
			continue
		}
		h.Log.Log(debuglog.VDEBUG, "deployharness: %s cpu=%.1f%% rss=%dKB", c.Name, cpuPct, mem.RSS/1024)
	}
}
