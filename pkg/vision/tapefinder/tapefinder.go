// Package tapefinder finds retroreflective tape in frames from a local camera.
package tapefinder

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
)

// TapeFinder looks for the largest blob of tape-coloured pixels in frames from
// a local camera.
type TapeFinder struct {
	cfg vision.TapeFinderConfig
	log log.Logger

	vision.Store
}

func New(cfg vision.TapeFinderConfig, staleAfter time.Duration, logger log.Logger) *TapeFinder {
	return &TapeFinder{
		cfg:   cfg,
		log:   logger,
		Store: vision.Store{StaleAfter: staleAfter},
	}
}

// Loop grabs and processes frames until ctx is done.
func (f *TapeFinder) Loop(ctx context.Context) error {
	webcam, err := gocv.VideoCaptureDevice(f.cfg.DeviceID)
	if err != nil {
		return errors.Wrapf(err, "failed to open camera %d", f.cfg.DeviceID)
	}
	defer webcam.Close()

	img := gocv.NewMat()
	defer img.Close()

	for ctx.Err() == nil {
		if ok := webcam.Read(&img); !ok || img.Empty() {
			f.log.Warnf("VISION: no frame from camera %d", f.cfg.DeviceID)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		t := f.process(img)
		t.Time = time.Now()
		f.Set(t)
	}
	return ctx.Err()
}

func (f *TapeFinder) process(img gocv.Mat) vision.Target {
	hsv := scaleAndConvertToHSV(img, f.cfg.ProcessWidth)
	defer hsv.Close()

	centre, err := findLargestBlob(hsv, &f.cfg.HSV, f.cfg.MinAreaPx)
	if err != nil {
		f.log.Debugf("VISION: %v", err)
		return vision.Target{}
	}
	x, y := vision.PixelToDegrees(float64(centre.X), float64(centre.Y), hsv.Cols(), hsv.Rows(),
		f.cfg.HFOVDegrees, f.cfg.VFOVDegrees)
	return vision.Target{Visible: true, X: x, Y: y}
}

func scaleAndConvertToHSV(img gocv.Mat, desiredWidth int) gocv.Mat {
	scaleFactor := float64(desiredWidth) / float64(img.Cols())
	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(img, &scaled, image.Point{}, scaleFactor, scaleFactor, gocv.InterpolationLinear)

	hsv := gocv.NewMat()
	gocv.CvtColor(scaled, &hsv, gocv.ColorBGRToHSV)
	return hsv
}

func hsvMaskNoWrapAround(hsv gocv.Mat, r *vision.HSVRange) gocv.Mat {
	lb, _ := gocv.NewMatFromBytes(1, 3, gocv.MatTypeCV8U, []byte{r.HueMin, r.SatMin, r.ValMin})
	defer lb.Close()
	ub, _ := gocv.NewMatFromBytes(1, 3, gocv.MatTypeCV8U, []byte{r.HueMax, r.SatMax, r.ValMax})
	defer ub.Close()
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	gocv.InRange(hsv, lb, ub, &mask)
	return mask
}

func hsvMask(hsv gocv.Mat, r *vision.HSVRange) gocv.Mat {
	if r.HueMax > r.HueMin {
		return hsvMaskNoWrapAround(hsv, r)
	}
	// Hue wraps at 180.
	upper := *r
	upper.HueMax = 180
	mask1 := hsvMaskNoWrapAround(hsv, &upper)
	defer mask1.Close()
	lower := *r
	lower.HueMin = 0
	mask2 := hsvMaskNoWrapAround(hsv, &lower)
	defer mask2.Close()
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	gocv.BitwiseOr(mask1, mask2, &mask)
	return mask
}

func findLargestBlob(hsv gocv.Mat, r *vision.HSVRange, minArea float64) (image.Point, error) {
	mask := hsvMask(hsv, r)
	defer mask.Close()

	// One pass each of erosion and dilation knocks out speckle.
	kernel := gocv.NewMat()
	defer kernel.Close()
	gocv.Erode(mask, &mask, kernel)
	gocv.Dilate(mask, &mask, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return image.Point{}, errors.New("no contours")
	}

	var (
		maxArea float64
		best    image.Rectangle
	)
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if area := gocv.ContourArea(c); area > maxArea {
			maxArea = area
			best = gocv.BoundingRect(c)
		}
	}
	if maxArea < minArea {
		return image.Point{}, errors.Errorf("largest contour too small (%.0f px)", maxArea)
	}
	return image.Point{
		X: (best.Min.X + best.Max.X) / 2,
		Y: (best.Min.Y + best.Max.Y) / 2,
	}, nil
}
