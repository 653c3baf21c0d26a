package kangaroo

import "fmt"

// CSVHeader names the columns formatOdometryCSV produces.
const CSVHeader = "left_mm,right_mm,timestamp"

func formatOdometryCSV(r OdometryRow) string {
	return fmt.Sprintf("%d,%d,%.3f", r.LeftMM, r.RightMM, r.Timestamp)
}
