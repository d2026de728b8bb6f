package sim

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/yeesim/yeesim/sim/mode"
	"github.com/yeesim/yeesim/sim/units"
)

// epsHomogeneityTol bounds the permittivity spread allowed under an analytic
// plane-wave mode.
const epsHomogeneityTol = 1e-5

// computeModes fills the source plane's mode table according to its kind.
func (sd *SourceData) computeModes(nmodes int) error {
	switch s := sd.source.(type) {
	case *PlaneWave:
		return sd.computeModesPlaneWave(s, nmodes)
	case *PlaneSource:
		return sd.computeModesPlaneSource(s, nmodes)
	case *ModeSource:
		return sd.computeModesModeSource(nmodes)
	}
	return fail(ErrSource, "source %q of kind %T has no modes", sd.source.Base().Name, sd.source)
}

func (sd *SourceData) computeModesModeSource(nmodes int) error {
	return sd.ModePlane.ComputeModes(nmodes)
}

// analyticPreconditions checks what every closed-form mode needs: a single
// mode over a homogeneous cross-section. It returns the effective index.
func (sd *SourceData) analyticPreconditions(nmodes int) (float64, error) {
	name := sd.source.Base().Name
	homog, epsMax := sd.ModePlane.EpsHomogeneous(epsHomogeneityTol)
	if !homog {
		return 0, fail(ErrSource, "source %q: plane wave sources require a homogeneous cross-section", name)
	}
	if nmodes != 1 {
		return 0, fail(ErrSource, "source %q: only a single mode can be computed for a plane wave source, got %d", name, nmodes)
	}
	return math.Sqrt(epsMax), nil
}

// normalize scales a mode to unit self-overlap (unit modal power).
func normalize(m *mode.Mode, step [2]float64) {
	pow := real(mode.DotProduct(m.Fields(), m.Fields(), step))
	if pow > 0 {
		m.Scale(complex(1/math.Sqrt(pow), 0))
	}
}

func (sd *SourceData) computeModesPlaneWave(s *PlaneWave, nmodes int) error {
	neff, err := sd.analyticPreconditions(nmodes)
	if err != nil {
		return err
	}
	p := sd.ModePlane
	ic := -1
	for i, c := range p.CrossInds {
		if c == s.Polarization {
			ic = i
		}
	}
	if ic < 0 {
		return fail(ErrSource, "source %q: polarization axis %d is not in the plane normal to axis %d",
			s.Name, s.Polarization, p.NormInd)
	}
	// E along cross axis ic, H along the other one, signed so E x H points
	// along the normal.
	hval := complex(neff/units.ETA0, 0)
	if ic == 1 {
		hval = -hval
	}
	n1, n2 := p.Shape()
	modes := make([][]*mode.Mode, len(p.Freqs))
	for fi, f := range p.Freqs {
		e, h := mode.NewField(n1, n2), mode.NewField(n1, n2)
		for q := range e.C[ic] {
			e.C[ic][q] = 1
			h.C[1-ic][q] = hval
		}
		m := mode.New(e, h, neff, 0)
		normalize(m, p.MeshStep)
		var kv [3]complex128
		kv[p.NormInd] = complex(float64(sd.dirInd)*neff*2*math.Pi*f/units.C0, 0)
		m.KVector = &kv
		modes[fi] = []*mode.Mode{m}
	}
	p.Modes = modes
	return nil
}

func (sd *SourceData) computeModesPlaneSource(s *PlaneSource, nmodes int) error {
	neff, err := sd.analyticPreconditions(nmodes)
	if err != nil {
		return err
	}
	p := sd.ModePlane
	n1, n2 := p.Shape()
	d1, d2 := float64(n1)*p.MeshStep[0], float64(n2)*p.MeshStep[1]
	k1 := float64(s.Order[0]) * 2 * math.Pi / d1
	k2 := float64(s.Order[1]) * 2 * math.Pi / d2

	modes := make([][]*mode.Mode, len(p.Freqs))
	for fi, f := range p.Freqs {
		k0 := 2 * math.Pi * neff * f / units.C0
		kn2 := k0*k0 - k1*k1 - k2*k2
		if kn2 <= 0 {
			return fail(ErrSource, "source %q: diffraction order %v is not available at %g Hz (evanescent)", s.Name, s.Order, f)
		}
		kn := math.Sqrt(kn2)

		// Work in the (cross0, cross1, normal) frame, propagating forward;
		// the injection direction enters through the currents and kvector.
		dir := r3.Vec{X: k1 / k0, Y: k2 / k0, Z: kn / k0}
		normal := r3.Vec{Z: 1}
		var sVec, pVec r3.Vec
		if k1 == 0 && k2 == 0 {
			pVec = r3.Vec{X: 1}
			sVec = r3.Cross(dir, pVec)
		} else {
			sVec = r3.Unit(r3.Cross(normal, dir))
			pVec = r3.Cross(sVec, dir)
		}

		var epol r3.Vec
		if s.PolVector != nil {
			v := r3.Vec{X: s.PolVector[p.CrossInds[0]], Y: s.PolVector[p.CrossInds[1]], Z: s.PolVector[p.NormInd]}
			v = r3.Sub(v, r3.Scale(r3.Dot(v, dir), dir))
			if r3.Norm(v) < 1e-12 {
				return fail(ErrSource, "source %q: polarization %v is parallel to the propagation direction", s.Name, *s.PolVector)
			}
			epol = r3.Unit(v)
		} else {
			epol = r3.Add(r3.Scale(math.Cos(s.PolAngle), pVec), r3.Scale(math.Sin(s.PolAngle), sVec))
		}
		hpol := r3.Scale(neff/units.ETA0, r3.Cross(dir, epol))

		e, h := mode.NewField(n1, n2), mode.NewField(n1, n2)
		epc := [3]float64{epol.X, epol.Y, epol.Z}
		hpc := [3]float64{hpol.X, hpol.Y, hpol.Z}
		meshes := [3][2][]float64{p.MeshE1, p.MeshE2, p.Mesh}
		for c := 0; c < 3; c++ {
			xs, ys := meshes[c][0], meshes[c][1]
			for i := 0; i < n1; i++ {
				for j := 0; j < n2; j++ {
					ph := cmplx.Exp(complex(0, xs[i]*k1+ys[j]*k2))
					q := e.Idx(i, j)
					e.C[c][q] = complex(epc[c], 0) * ph
					h.C[c][q] = complex(hpc[c], 0) * ph
				}
			}
		}
		m := mode.New(e, h, neff, 0)
		normalize(m, p.MeshStep)
		var kv [3]complex128
		kv[p.CrossInds[0]] = complex(k1, 0)
		kv[p.CrossInds[1]] = complex(k2, 0)
		kv[p.NormInd] = complex(float64(sd.dirInd)*kn, 0)
		m.KVector = &kv
		modes[fi] = []*mode.Mode{m}
	}
	p.Modes = modes
	sd.Complex = k1 != 0 || k2 != 0
	return nil
}
