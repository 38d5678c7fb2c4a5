package chart

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"

	"pocket-signal-pro/internal/domain"
)

const (
	chartWidth  = 640
	chartHeight = 360
	walkPoints  = 90
)

var (
	colBackground = color.RGBA{R: 250, G: 252, B: 255, A: 255}
	colGrid       = color.RGBA{R: 225, G: 232, B: 240, A: 255}
	colBuy        = color.RGBA{R: 18, G: 140, B: 126, A: 255}
	colSell       = color.RGBA{R: 210, G: 61, B: 87, A: 255}
	colMarker     = color.RGBA{R: 62, G: 106, B: 214, A: 255}
	colBand       = color.RGBA{R: 104, G: 122, B: 146, A: 255}
)

// Renderer draws the illustrative price walk attached to a result screen.
// The walk is synthetic: it is seeded from the signal so the same result
// renders the same image, and it drifts toward the signal's direction.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderSignal returns a PNG for the given signal.
func (r *Renderer) RenderSignal(signal domain.Signal) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fillRect(img, img.Bounds(), colBackground)

	plot := image.Rect(20, 20, chartWidth-20, chartHeight-30)
	drawGrid(img, plot, 8, 5)

	series := syntheticWalk(signal)
	minV, maxV := bounds(series)

	tint := colBuy
	if signal.Direction == domain.DirectionSell {
		tint = colSell
	}

	lastX, lastY := -1, -1
	for i, v := range series {
		x := mapIndexToX(i, len(series), plot)
		y := mapValueToY(v, minV, maxV, plot)
		if lastX >= 0 {
			drawLine(img, lastX, lastY, x, y, tint)
		}
		lastX, lastY = x, y
	}

	// Entry marker on the most recent point, and a band at the walk's mean.
	drawLine(img, lastX, plot.Min.Y, lastX, plot.Max.Y, colMarker)
	mean := (minV + maxV) / 2
	meanY := mapValueToY(mean, minV, maxV, plot)
	drawLine(img, plot.Min.X, meanY, plot.Max.X, meanY, colBand)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// syntheticWalk produces a bounded random walk whose tail leans the way the
// signal points, scaled by confidence.
func syntheticWalk(signal domain.Signal) []float64 {
	seed := int64(signal.Confidence * 10)
	for _, ch := range signal.Instrument + signal.Duration {
		seed = seed*31 + int64(ch)
	}
	rng := rand.New(rand.NewSource(seed))

	drift := signal.Confidence / 500
	if signal.Direction == domain.DirectionSell {
		drift = -drift
	}

	out := make([]float64, walkPoints)
	value := 100.0
	for i := range out {
		value += rng.NormFloat64()
		if i > walkPoints*2/3 {
			value += drift * float64(i)
		}
		out[i] = value
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if minV == maxV {
		maxV = minV + 1
	}
	return minV, maxV
}

func drawGrid(img *image.RGBA, rect image.Rectangle, verticalLines, horizontalLines int) {
	for i := 0; i <= verticalLines; i++ {
		x := rect.Min.X + (rect.Dx()*i)/maxInt(1, verticalLines)
		drawLine(img, x, rect.Min.Y, x, rect.Max.Y, colGrid)
	}
	for i := 0; i <= horizontalLines; i++ {
		y := rect.Min.Y + (rect.Dy()*i)/maxInt(1, horizontalLines)
		drawLine(img, rect.Min.X, y, rect.Max.X, y, colGrid)
	}
}

func mapIndexToX(idx, total int, rect image.Rectangle) int {
	if total <= 1 {
		return rect.Min.X
	}
	return rect.Min.X + (idx*(rect.Dx()-1))/(total-1)
}

func mapValueToY(value, minV, maxV float64, rect image.Rectangle) int {
	if maxV <= minV {
		return rect.Max.Y
	}
	ratio := (value - minV) / (maxV - minV)
	ratio = math.Max(0, math.Min(1, ratio))
	return rect.Max.Y - int(ratio*float64(rect.Dy()-1))
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	r := rect.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
