package document

// Supported aspect-ratio settings. The string form is what the generation
// service accepts; the numeric form drives padding and match detection.
var aspectRatios = map[string]float64{
	"1:1":  1,
	"16:9": 16.0 / 9.0,
	"9:16": 9.0 / 16.0,
	"4:3":  4.0 / 3.0,
	"3:4":  3.0 / 4.0,
}

// AspectRatioValue returns the numeric width/height ratio for a named
// aspect-ratio setting.
func AspectRatioValue(name string) (float64, bool) {
	v, ok := aspectRatios[name]
	return v, ok
}

// ValidAspectRatio reports whether the name is a supported setting.
func ValidAspectRatio(name string) bool {
	_, ok := aspectRatios[name]
	return ok
}
