package vision

import "math"

// PixelToDegrees converts a pixel position to crosshair offsets through a
// pinhole model of the camera.  Offsets are positive right and up.
func PixelToDegrees(px, py float64, width, height int, hfovDeg, vfovDeg float64) (x, y float64) {
	halfW := float64(width) / 2
	halfH := float64(height) / 2
	focalX := halfW / math.Tan(hfovDeg/2*math.Pi/180)
	focalY := halfH / math.Tan(vfovDeg/2*math.Pi/180)
	x = math.Atan((px-halfW)/focalX) * 180 / math.Pi
	y = math.Atan((halfH-py)/focalY) * 180 / math.Pi
	return
}
