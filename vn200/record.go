// Package vn200 implements the VN200 GPS/IMU sensor driver: the ASCII
// frame parser shared by every "$VN***" sentence, the init dialogue, and
// the asynchronous polling loop that publishes parsed records.
package vn200

import "fmt"

// GPSRecord is one parsed $VNGPE sentence (ECEF variant; see the design
// notes on why $VNGPS is not implemented).
type GPSRecord struct {
	TimeOfWeek float64 // seconds
	Week       uint16
	FixType    uint8
	NumSats    uint8
	PosECEF    [3]float64 // metres
	VelNED     [3]float32 // m/s
	PosAcc     [3]float32 // metres
	SpeedAcc   float32
	TimeAcc    float32
	Timestamp  float64 // wall-clock seconds since the Unix epoch (not relative to process start)
}

// IMURecord is one parsed $VNIMU sentence.
type IMURecord struct {
	Compass   [3]float64 // gauss
	Accel     [3]float64 // m/s^2
	Gyro      [3]float64 // rad/s
	Temp      float64    // degrees C
	Baro      float64    // kPa
	Timestamp float64
}

// FormatIMUCSV renders r with the rounding the original sensor firmware's
// final logger uses: %.4f for compass, %.3f for accel, %.6f for gyro,
// %.1f for temp, %.3f for baro, %.9f for timestamp.
func FormatIMUCSV(r IMURecord) string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.3f,%.3f,%.3f,%.6f,%.6f,%.6f,%.1f,%.3f,%.9f",
		r.Compass[0], r.Compass[1], r.Compass[2],
		r.Accel[0], r.Accel[1], r.Accel[2],
		r.Gyro[0], r.Gyro[1], r.Gyro[2],
		r.Temp, r.Baro, r.Timestamp)
}

// FormatGPSCSV renders r with %.3f for ECEF position, %.4f for GPS time,
// and %.9f for the wall-clock timestamp.
func FormatGPSCSV(r GPSRecord) string {
	return fmt.Sprintf("%.4f,%d,%d,%d,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f,%.9f,%.9f",
		r.TimeOfWeek, r.Week, r.FixType, r.NumSats,
		r.PosECEF[0], r.PosECEF[1], r.PosECEF[2],
		r.VelNED[0], r.VelNED[1], r.VelNED[2],
		r.PosAcc[0], r.PosAcc[1], r.PosAcc[2],
		r.SpeedAcc, r.TimeAcc, r.Timestamp)
}

// CSVHeaderIMU / CSVHeaderGPS name the columns FormatIMUCSV / FormatGPSCSV
// produce, for the file header line logsink writes once per run.
const (
	CSVHeaderIMU = "compass_x,compass_y,compass_z,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z,temp,baro,timestamp"
	CSVHeaderGPS = "time_of_week,week,fix_type,num_sats,ecef_x,ecef_y,ecef_z,vel_n,vel_e,vel_d,pos_acc_x,pos_acc_y,pos_acc_z,speed_acc,time_acc,timestamp"
)
