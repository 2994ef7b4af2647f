package fractal

import "sort"

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = ComplexRectangle{
		RMin: -0.8,
		RMax: -0.7,
		IMin: 0.05,
		IMax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = ComplexRectangle{
		RMin: 0.25,
		RMax: 0.35,
		IMin: -0.05,
		IMax: 0.05,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = ComplexRectangle{
		RMin: -0.7435,
		RMax: -0.7420,
		IMin: 0.1310,
		IMax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = ComplexRectangle{
		RMin: -0.7480,
		RMax: -0.7450,
		IMin: 0.0950,
		IMax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = ComplexRectangle{
		RMin: -0.7400,
		RMax: -0.7350,
		IMin: 0.1800,
		IMax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = ComplexRectangle{
		RMin: -1.7390,
		RMax: -1.7375,
		IMin: -0.0235,
		IMax: -0.0220,
	}
)

var landmarks = map[string]ComplexRectangle{
	"seahorse-valley":  SeahorseValley,
	"elephant-valley":  ElephantValley,
	"spiral-minibrot":  SpiralMinibrot,
	"triple-spiral":    TripleSpiral,
	"dragon-valley":    ValleyOfTheDragon,
	"mini-spiral-brot": MinibrotInMiniSpiral,
}

// Landmark looks up a named region.
func Landmark(name string) (ComplexRectangle, bool) {
	r, ok := landmarks[name]
	return r, ok
}

// LandmarkNames returns the known landmark names in sorted order.
func LandmarkNames() []string {
	names := make([]string, 0, len(landmarks))
	for n := range landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
