package perturb_test

import (
	"fmt"

	"github.com/katalvlaran/saftgamma/matrix"
	"github.com/katalvlaran/saftgamma/perturb"
)

// ExampleCalculator_A1S evaluates the first-order term of a single CH4 bead.
func ExampleCalculator_A1S() {
	c, _ := perturb.New(perturb.DefaultOptions())
	lambda, _ := matrix.FromRows([][]float64{{12.504}})
	eps, _ := matrix.FromRows([][]float64{{256.77}})
	d, _ := matrix.FromRows([][]float64{{3.62e-10}})

	out, err := c.A1S([]float64{0}, 1, lambda, []float64{0}, eps, d)
	if err != nil {
		fmt.Println(err)
		return
	}
	v, _ := out[0].At(0, 0)
	fmt.Println(v)

	_, err = c.A1S([]float64{1e27}, 1, lambda, []float64{1}, eps, d)
	fmt.Println(err)
	// Output:
	// -0
	// perturb.A1S: zetax=1: saftgamma: domain error
}
