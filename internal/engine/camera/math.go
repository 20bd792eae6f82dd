package camera

import "math"

func sin(r float32) float32 { return float32(math.Sin(float64(r))) }

func cos(r float32) float32 { return float32(math.Cos(float64(r))) }
