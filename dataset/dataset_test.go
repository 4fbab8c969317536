package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/saftgamma/dataset"
	"github.com/katalvlaran/saftgamma/faults"
	"github.com/katalvlaran/saftgamma/groups"
	"github.com/katalvlaran/saftgamma/phase"
)

const runFile = `
groups:
  - {name: CH4, segments: 1, shape_factor: 1, epsilon: 153.36, sigma: 3.7412, lambdar: 12.65, lambdaa: 6}
  - {name: CH3, segments: 1, shape_factor: 0.57255, epsilon: 256.77, sigma: 4.0773, lambdar: 15.05, lambdaa: 6}
components:
  - {name: methane, groups: [{group: CH4, count: 1}]}
  - {name: ethane, groups: [{group: CH3, count: 2}]}
fit:
  method: NelderMead
datasets:
  - name: vle
    data_class_type: TLVE
    calculation_type: phase_xiT
    T: [200, 210]
    P: [2.0e6, 2.5e6]
    xi: [[0.3, 0.7], [0.35, 0.65]]
    yi: [[0.8, 0.2], [0.78, 0.22]]
    weights: {P: 2, yi: [1, 0.5]}
    density_dict: {rhoinc: 20}
  - name: sat
    data_class_type: saturation_properties
    component: ethane
    T: [250]
    Psat: [1.3e6]
`

func binarySystem() *groups.System {
	in, err := dataset.Decode(strings.NewReader(runFile))
	Expect(err).NotTo(HaveOccurred())
	sys, _, err := in.Build(zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func validRaw() dataset.Raw {
	return dataset.Raw{
		Name:            "vle",
		Type:            dataset.TypeTLVE,
		CalculationType: "phase_xiT",
		T:               []float64{200, 210},
		P:               []float64{2.0e6, 2.5e6},
		Xi:              [][]float64{{0.3, 0.7}, {0.35, 0.65}},
		Yi:              [][]float64{{0.8, 0.2}, {0.78, 0.22}},
	}
}

var _ = Describe("Input", func() {
	It("decodes and builds a run file", func() {
		in, err := dataset.Decode(strings.NewReader(runFile))
		Expect(err).NotTo(HaveOccurred())
		Expect(in.Groups).To(HaveLen(2))
		Expect(in.Components[1].Groups).To(Equal([]groups.GroupCount{{Group: "CH3", Count: 2}}))

		sys, sets, err := in.Build(zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.NumComponents()).To(Equal(2))
		Expect(sets).To(HaveLen(2))

		vle := sets[0]
		Expect(vle.Kind).To(Equal(dataset.KindTLVE))
		Expect(vle.Len()).To(Equal(2))
		Expect(vle.TLVE.Mode).To(Equal(phase.PhaseXiT))
		Expect(vle.TLVE.Density.RhoInc).To(Equal(20.0))

		want := dataset.TLVEWeights{
			P:  []float64{2, 2},
			T:  []float64{1, 1},
			Xi: []float64{1, 1},
			Yi: []float64{1, 0.5},
		}
		Expect(cmp.Diff(want, vle.TLVE.Weights)).To(BeEmpty())
		Expect(vle.TLVE.Known(1).X()).To(Equal([]float64{0.35, 0.65}))
		Expect(vle.TLVE.Unknown(0).X()).To(Equal([]float64{0.8, 0.2}))

		sat := sets[1]
		Expect(sat.Kind).To(Equal(dataset.KindSatProps))
		Expect(sat.SatProps.Component).To(Equal(1))
		Expect(sat.SatProps.RhoL).To(BeNil())
		Expect(sat.SatProps.Weights.Psat).To(Equal([]float64{1}))
	})

	It("loads from disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run.yaml")
		Expect(os.WriteFile(path, []byte(runFile), 0o600)).To(Succeed())

		in, err := dataset.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(in.Datasets).To(HaveLen(2))
	})

	It("reports missing files", func() {
		_, err := dataset.LoadFile(filepath.Join(GinkgoT().TempDir(), "absent.yaml"))
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("rejects duplicate dataset names", func() {
		in, err := dataset.Decode(strings.NewReader(runFile))
		Expect(err).NotTo(HaveOccurred())
		in.Datasets[1] = in.Datasets[0]
		_, _, err = in.Build(zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("duplicate")))
	})
})

// withFiveTemperatures extends validRaw to five complete points before
// applying mutate.
func withFiveTemperatures(mutate func(*dataset.Raw)) func(*dataset.Raw) {
	return func(r *dataset.Raw) {
		r.T = []float64{200, 205, 210, 215, 220}
		r.P = []float64{2.0e6, 2.1e6, 2.2e6, 2.3e6, 2.4e6}
		r.Xi = [][]float64{{0.3, 0.7}, {0.3, 0.7}, {0.3, 0.7}, {0.3, 0.7}, {0.3, 0.7}}
		r.Yi = [][]float64{{0.8, 0.2}, {0.8, 0.2}, {0.8, 0.2}, {0.8, 0.2}, {0.8, 0.2}}
		mutate(r)
	}
}

var _ = Describe("New", func() {
	var sys *groups.System

	BeforeEach(func() {
		sys = binarySystem()
	})

	It("names the P field when only the pressure count is off", func() {
		raw := validRaw()
		withFiveTemperatures(func(r *dataset.Raw) { r.P = r.P[:4] })(&raw)
		_, err := dataset.New(raw, sys, nil)
		var ve *faults.ValidationError
		Expect(errors.As(err, &ve)).To(BeTrue(), "got %v", err)
		Expect(ve.Field).To(Equal("vle.P"))

		raw = validRaw()
		withFiveTemperatures(func(*dataset.Raw) {})(&raw)
		ds, err := dataset.New(raw, sys, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(ds.Len()).To(Equal(5))
	})

	DescribeTable("rejects malformed TLVE data",
		func(mutate func(*dataset.Raw)) {
			raw := validRaw()
			mutate(&raw)
			_, err := dataset.New(raw, sys, nil)
			Expect(errors.Is(err, faults.ErrValidation)).To(BeTrue(), "got %v", err)
		},
		Entry("T and P lengths differ", withFiveTemperatures(func(r *dataset.Raw) { r.P = r.P[:4] })),
		Entry("no T and no P", func(r *dataset.Raw) { r.T, r.P = nil, nil }),
		Entry("missing yi", func(r *dataset.Raw) { r.Yi = nil }),
		Entry("missing xi", func(r *dataset.Raw) { r.Xi = nil }),
		Entry("P without T", func(r *dataset.Raw) { r.T = nil }),
		Entry("unknown calculation type", func(r *dataset.Raw) { r.CalculationType = "flash" }),
		Entry("composition not summing to one", func(r *dataset.Raw) { r.Xi[0] = []float64{0.3, 0.3} }),
		Entry("wrong component count", func(r *dataset.Raw) { r.Yi[1] = []float64{1} }),
		Entry("weight length mismatch", func(r *dataset.Raw) {
			r.Weights = map[string]dataset.WeightValue{"P": {1, 2, 3}}
		}),
		Entry("unknown weight key", func(r *dataset.Raw) {
			r.Weights = map[string]dataset.WeightValue{"rho": dataset.Scalar(1)}
		}),
		Entry("negative weight", func(r *dataset.Raw) {
			r.Weights = map[string]dataset.WeightValue{"T": dataset.Scalar(-1)}
		}),
		Entry("unknown density option", func(r *dataset.Raw) {
			r.DensityDict = map[string]float64{"pressure": 1}
		}),
		Entry("non-positive temperature", func(r *dataset.Raw) { r.T[1] = 0 }),
	)

	It("rejects an unknown data class", func() {
		raw := validRaw()
		raw.Type = "LLE"
		_, err := dataset.New(raw, sys, nil)
		Expect(errors.Is(err, faults.ErrValidation)).To(BeTrue())
	})

	It("defaults the calculation type and warns", func() {
		core, logs := observer.New(zap.WarnLevel)
		raw := validRaw()
		raw.CalculationType = ""

		d, err := dataset.New(raw, sys, zap.New(core))
		Expect(err).NotTo(HaveOccurred())
		Expect(d.TLVE.Mode).To(Equal(phase.PhaseXiT))
		Expect(logs.FilterMessageSnippet("calculation_type").Len()).To(Equal(1))
	})

	It("defaults to phase_yiT when xi is empty and then rejects the length", func() {
		core, logs := observer.New(zap.WarnLevel)
		raw := validRaw()
		raw.CalculationType = ""
		raw.T, raw.P = []float64{200}, nil
		raw.Xi, raw.Yi = [][]float64{}, [][]float64{{0.8, 0.2}}

		_, err := dataset.New(raw, sys, zap.New(core))
		Expect(errors.Is(err, faults.ErrValidation)).To(BeTrue())
		Expect(logs.All()[0].ContextMap()).To(HaveKeyWithValue("mode", "phase_yiT"))
	})

	It("accepts a dew-point dataset without pressures", func() {
		raw := validRaw()
		raw.CalculationType = "phase_yiT"
		raw.P = nil

		d, err := dataset.New(raw, sys, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.TLVE.P).To(BeNil())
		Expect(d.TLVE.Known(0).X()).To(Equal([]float64{0.8, 0.2}))
		Expect(d.TLVE.UnknownWeights()).To(Equal(d.TLVE.Weights.Xi))
	})

	DescribeTable("rejects malformed saturation data",
		func(raw dataset.Raw) {
			raw.Type = dataset.TypeSatProps
			_, err := dataset.New(raw, sys, nil)
			Expect(errors.Is(err, faults.ErrValidation)).To(BeTrue(), "got %v", err)
		},
		Entry("component required for a binary", dataset.Raw{T: []float64{250}, Psat: []float64{1e6}}),
		Entry("unknown component", dataset.Raw{Component: "water", T: []float64{250}, Psat: []float64{1e6}}),
		Entry("no measured property", dataset.Raw{Component: "ethane", T: []float64{250}}),
		Entry("length mismatch", dataset.Raw{Component: "ethane", T: []float64{250, 260}, RhoL: []float64{1}}),
	)
})

var _ = Describe("density_units", func() {
	massSystem := func(mass float64) *groups.System {
		tbl, err := groups.NewTable([]groups.Group{
			{Name: "CH3", Segments: 1, ShapeFactor: 0.57255, Epsilon: 256.77, Sigma: 4.0773, LambdaR: 15.05, LambdaA: 6, Mass: mass},
		}, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		sys, err := groups.NewSystem(tbl, []groups.Component{{Name: "ethane", Groups: []groups.GroupCount{{Group: "CH3", Count: 2}}}})
		Expect(err).NotTo(HaveOccurred())
		return sys
	}
	satRaw := func(units string) dataset.Raw {
		return dataset.Raw{
			Name: "sat", Type: dataset.TypeSatProps, T: []float64{250},
			RhoL: []float64{451.1}, RhoV: []float64{22.2}, DensityUnits: units,
		}
	}

	It("converts mass densities with the component molar mass", func() {
		sys := massSystem(0.015035)
		Expect(sys.MolarMass(0)).To(BeNumerically("~", 0.03007, 1e-12))

		d, err := dataset.New(satRaw(dataset.UnitsMass), sys, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.SatProps.RhoL[0]).To(BeNumerically("~", 451.1/0.03007, 1e-6))
		Expect(d.SatProps.RhoV[0]).To(BeNumerically("~", 22.2/0.03007, 1e-6))

		d, err = dataset.New(satRaw(dataset.UnitsMolar), sys, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.SatProps.RhoL).To(Equal([]float64{451.1}))
	})

	It("rejects mass densities without group masses and unknown units", func() {
		_, err := dataset.New(satRaw(dataset.UnitsMass), massSystem(0), nil)
		var ve *faults.ValidationError
		Expect(errors.As(err, &ve)).To(BeTrue(), "got %v", err)
		Expect(ve.Field).To(Equal("sat.density_units"))

		_, err = dataset.New(satRaw("g/cm3"), massSystem(0.015035), nil)
		Expect(errors.Is(err, faults.ErrValidation)).To(BeTrue())
	})
})

var _ = Describe("WeightValue", func() {
	It("accepts scalars and lists", func() {
		in, err := dataset.Decode(strings.NewReader("datasets: [{weights: {P: 3, T: [1, 2]}}]"))
		Expect(err).NotTo(HaveOccurred())
		w := in.Datasets[0].Weights
		Expect(w["P"]).To(Equal(dataset.WeightValue{3}))
		Expect(w["T"]).To(Equal(dataset.WeightValue{1, 2}))
	})
})
