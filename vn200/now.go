package vn200

import "github.com/dstockhouse/mrfusion/mrutil"

func nowDouble() float64 {
	return mrutil.NowDouble()
}
