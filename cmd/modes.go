package cmd

import (
	"fmt"
	"io"
	"math/cmplx"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/yeesim/yeesim/sim"
	"github.com/yeesim/yeesim/sim/mode"
)

// modesCmd synthesizes the analytic modes of plane-wave sources
var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Compute plane-wave source modes and report their injection currents",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if configPath == "" {
			logrus.Fatalf("--config is required")
		}
		if err := runModes(cmd.OutOrStdout(), configPath, sourceName); err != nil {
			logrus.Fatalf("modes failed: %v", err)
		}
	},
}

// runModes selects mode 0 of every plane-wave or plane source (or only the
// one called name) and prints its index, wave vector, power and currents.
// General mode sources need an external solver and are listed as skipped.
func runModes(w io.Writer, path, name string) error {
	s, err := loadSimulation(path)
	if err != nil {
		return err
	}
	found := false
	for _, src := range s.Sources() {
		b := src.Base()
		if name != "" && b.Name != name {
			continue
		}
		found = true
		switch src.(type) {
		case *sim.PlaneWave, *sim.PlaneSource:
		case *sim.ModeSource:
			fmt.Fprintf(w, "%s: skipped, mode sources need an eigenmode solver\n", b.Name)
			continue
		default:
			fmt.Fprintf(w, "%s: no modes\n", b.Name)
			continue
		}
		if err := s.SetMode(src, 0, true); err != nil {
			return err
		}
		sd, err := s.SourceData(src)
		if err != nil {
			return err
		}
		m, _, _ := sd.Mode()
		power := mode.DotProduct(m.Fields(), m.Fields(), sd.ModePlane.MeshStep)
		inds, err := s.SourceIndices(src)
		if err != nil {
			return err
		}
		cur, err := sd.Currents(inds)
		if err != nil {
			return err
		}
		var peak float64
		for _, c := range cur {
			for _, v := range c {
				peak = max(peak, cmplx.Abs(v))
			}
		}
		kv := *m.KVector
		fmt.Fprintf(w, "%s: neff=%.6f k=(%.4g, %.4g, %.4g) 1/um power=%.6f complex=%t\n",
			b.Name, m.Neff, real(kv[0]), real(kv[1]), real(kv[2]), real(power), sd.Complex)
		fmt.Fprintf(w, "%s: %d current points, peak |J|,|M| = %.4g\n", b.Name, len(cur), peak)
	}
	if name != "" && !found {
		return fmt.Errorf("%w: no source named %q", sim.ErrInvalidArgument, name)
	}
	return nil
}

func init() {
	modesCmd.Flags().StringVar(&sourceName, "source", "", "Only report the named source")
	rootCmd.AddCommand(modesCmd)
}
