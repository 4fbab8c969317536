// Package dataset holds experimental data as a closed tagged variant.
//
// A Dataset is exactly one of:
//
//   - TLVE: temperature-dependent vapor–liquid equilibrium points evaluated
//     in phase_xiT or phase_yiT mode.
//   - SatProps: pure-component saturation pressure and coexisting densities.
//
// Every structural rule (required fields, equal array lengths, weight array
// lengths, known calculation types, compositions summing to one) is checked
// in New, before any solve is attempted. Evaluation code dispatches on Kind.
//
// Run inputs are YAML documents read with gopkg.in/yaml.v3:
//
//	groups:      [{name: CH4, segments: 1, shape_factor: 1, epsilon: 153.36, sigma: 3.7412, lambdar: 12.65, lambdaa: 6}]
//	components:  [{name: methane, groups: [{group: CH4, count: 1}]}]
//	datasets:
//	  - name: methane-vle
//	    data_class_type: TLVE
//	    calculation_type: phase_xiT
//	    T: [140, 150]
//	    P: [6.4e5, 1.04e6]
//	    xi: [[1], [1]]
//	    yi: [[1], [1]]
//	    weights: {P: 1, yi: [1, 0.5]}
//	    density_dict: {rhoinc: 10}
package dataset
