package images

import (
	"image"
	"image/color"

	"github.com/jypelle/sunface/internal/face/weather"
)

const iconPixelSize = 3

var iconPalette = map[byte]color.RGBA{
	'Y': {0xff, 0xd5, 0x4f, 0xff},
	'W': {0xec, 0xef, 0xf1, 0xff},
	'G': {0x90, 0xa4, 0xae, 0xff},
	'B': {0x4f, 0xc3, 0xf7, 0xff},
	'S': {0xff, 0xff, 0xff, 0xff},
	'L': {0xff, 0xee, 0x58, 0xff},
}

var iconArts = map[weather.Icon][]string{
	weather.NONE_ICON: {
		"............",
		"............",
		"............",
		"....GGGG....",
		"...G....G...",
		"...G....G...",
		"...G....G...",
		"...G....G...",
		"....GGGG....",
		"............",
		"............",
		"............",
	},
	weather.CLEAR_ICON: {
		".....Y......",
		".Y...Y...Y..",
		"..Y.....Y...",
		"....YYY.....",
		"...YYYYY....",
		"YY.YYYYY.YY.",
		"...YYYYY....",
		"....YYY.....",
		"..Y.....Y...",
		".Y...Y...Y..",
		".....Y......",
		"............",
	},
	weather.LIGHT_CLOUDS_ICON: {
		"......Y.....",
		"..Y.......Y.",
		".....YYY....",
		"....YYYYY...",
		"..WWW.YYY.YY",
		".WWWWW.YY...",
		"WWWWWWWW....",
		"WWWWWWWWW...",
		".WWWWWWW....",
		"..........Y.",
		"............",
		"............",
	},
	weather.CLOUDY_ICON: {
		"............",
		"............",
		"....WWW.....",
		"...WWWWW....",
		"..WWWWWWWW..",
		".WWWWWWWWWW.",
		"WWWWWWWWWWWW",
		"WWWWWWWWWWWW",
		".WWWWWWWWWW.",
		"............",
		"............",
		"............",
	},
	weather.LIGHT_RAIN_ICON: {
		"....GGG.....",
		"...GGGGG....",
		"..GGGGGGGG..",
		".GGGGGGGGGG.",
		"GGGGGGGGGGGG",
		".GGGGGGGGGG.",
		"............",
		"...B.....B..",
		"..B.....B...",
		"............",
		"......B.....",
		".....B......",
	},
	weather.RAIN_ICON: {
		"....GGG.....",
		"...GGGGG....",
		"..GGGGGGGG..",
		".GGGGGGGGGG.",
		"GGGGGGGGGGGG",
		".GGGGGGGGGG.",
		"............",
		"..B...B...B.",
		".B...B...B..",
		"............",
		"..B...B...B.",
		".B...B...B..",
	},
	weather.SNOW_ICON: {
		"....WWW.....",
		"...WWWWW....",
		"..WWWWWWWW..",
		".WWWWWWWWWW.",
		"WWWWWWWWWWWW",
		".WWWWWWWWWW.",
		"............",
		".S...S...S..",
		"............",
		"...S...S...S",
		"............",
		".S...S...S..",
	},
	weather.STORM_ICON: {
		"....GGG.....",
		"...GGGGG....",
		"..GGGGGGGG..",
		".GGGGGGGGGG.",
		"GGGGGGGGGGGG",
		".GGGGLLGGGG.",
		".....LL.....",
		"....LL......",
		"...LLLLL....",
		".....LL.....",
		"....LL......",
		"...L........",
	},
	weather.FOG_ICON: {
		"............",
		"............",
		".GGGGGGGGG..",
		"............",
		"...GGGGGGGGG",
		"............",
		".GGGGGGGGG..",
		"............",
		"...GGGGGGGGG",
		"............",
		".GGGGGGGGG..",
		"............",
	},
}

// pixelArt turns rows of palette keys into an image, one key per square of
// iconPixelSize pixels. Unknown keys are transparent.
func pixelArt(rows []string) *image.RGBA {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, width*iconPixelSize, len(rows)*iconPixelSize))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			c, ok := iconPalette[row[x]]
			if !ok {
				continue
			}
			for dy := 0; dy < iconPixelSize; dy++ {
				for dx := 0; dx < iconPixelSize; dx++ {
					img.SetRGBA(x*iconPixelSize+dx, y*iconPixelSize+dy, c)
				}
			}
		}
	}
	return img
}
