package mrutil

import (
	"fmt"
	"os"
	"time"
)

// MakeFilename builds the canonical run-correlated log filename:
//
//	<dir>/<prefix>-MM.DD.YYYY_HH-MM-SS_<key-hex8>.<ext>
//
// dir is created (recursively) if it does not already exist.
func MakeFilename(dir, prefix string, t time.Time, key uint32, ext string) (string, error) {
	if err := MkdirAll(dir); err != nil {
		return "", fmt.Errorf("mrutil: creating log dir %q: %w", dir, err)
	}
	stamp := t.Format("01.02.2006_15-04-05")
	return fmt.Sprintf("%s/%s-%s_%08x.%s", dir, prefix, stamp, key, ext), nil
}

// RunDirName builds the per-run directory name subsystem.Runtime.OpenLogDir
// creates:
//
//	MRFUSION_RUN-<mm.dd.yyyy>_<HH-MM-SS>_<key8>.d
func RunDirName(t time.Time, key uint32) string {
	stamp := t.Format("01.02.2006_15-04-05")
	return fmt.Sprintf("MRFUSION_RUN-%s_%08x.d", stamp, key)
}

// MkdirAll creates path and every missing parent directory, tolerating an
// already-existing directory the same way the source's mkdir_p tolerates
// EEXIST.
func MkdirAll(path string) error {
	err := os.MkdirAll(path, 0o755)
	if err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}
