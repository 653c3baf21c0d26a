package adsb

import "fmt"

// CSVHeader names the columns FormatCSV produces.
const CSVHeader = "icao,lat_e7,lon_e7,alt_mm,heading_cdeg,horvel_cms,vervel_cms,valid_flags,squawk,alt_type,callsign,emitter_type,time_since_contact"

// FormatCSV renders m as one CSV row.
func FormatCSV(m Message246) string {
	return fmt.Sprintf("%06X,%d,%d,%d,%d,%d,%d,%d,%d,%d,%s,%d,%d",
		m.ICAOAddress, m.Lat, m.Lon, m.AltitudeMM, m.HeadingCentideg,
		m.HorVelocityCMS, m.VerVelocityCMS, m.ValidFlags, m.Squawk,
		m.AltitudeType, trimCallsign(m.Callsign), m.EmitterType, m.TimeSinceContact)
}

func trimCallsign(cs [9]byte) string {
	n := len(cs)
	for n > 0 && (cs[n-1] == 0 || cs[n-1] == ' ') {
		n--
	}
	return string(cs[:n])
}
