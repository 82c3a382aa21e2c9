package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize    = 14
	lineHeight  = 18
	valueOffset = 110
	barWidth    = 110
)

// drawField draws one inspected field at (x, y) and returns the height used.
func drawField(x, y int32, f Field) int32 {
	switch f.Widget {
	case WidgetBar:
		if v, ok := floatValue(f.Value); ok {
			return drawBar(x, y, f.Name, v, barMax(f.Options))
		}
	case WidgetBool:
		if v, ok := f.Value.(bool); ok {
			return drawBool(x, y, f.Name, v)
		}
	}
	return drawLabel(x, y, f.Name, FormatValue(f.Value, f.Options["fmt"]))
}

func drawLabel(x, y int32, name, value string) int32 {
	rl.DrawText(name, x, y, fontSize, colorTextDim)
	rl.DrawText(value, x+valueOffset, y, fontSize, colorText)
	return lineHeight
}

func drawBar(x, y int32, name string, value, full float32) int32 {
	ratio := clamp01(value / full)
	rl.DrawText(name, x, y, fontSize, colorTextDim)

	bx := x + valueOffset
	rl.DrawRectangle(bx, y, barWidth, fontSize, colorBarBg)
	fill := colorBarFill
	if ratio < 0.3 {
		fill = colorBarLow
	}
	rl.DrawRectangle(bx, y, int32(float32(barWidth)*ratio), fontSize, fill)
	rl.DrawText(fmt.Sprintf("%.2f", value), bx+barWidth+5, y, fontSize, colorTextDim)
	return lineHeight
}

func drawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, fontSize, colorTextDim)
	c, text := colorBoolOff, "no"
	if value {
		c, text = colorBoolOn, "yes"
	}
	rl.DrawRectangle(x+valueOffset, y, fontSize, fontSize, c)
	rl.DrawText(text, x+valueOffset+fontSize+5, y, fontSize, c)
	return lineHeight
}

// drawSection draws a component header and its fields.
func drawSection(x, y int32, component any) int32 {
	start := y
	rl.DrawText(ComponentName(component), x, y, fontSize+2, colorSection)
	y += lineHeight + 2
	for _, f := range ExtractFields(component) {
		y += drawField(x+8, y, f)
	}
	return y - start + 6
}
