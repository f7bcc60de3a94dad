package rx

import (
	"context"
	"errors"

	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
	"github.com/cwbudde/algo-sdr/rx/nr"
)

// Noise reduction runs on 12 ksps audio. Paths up to nrHalveWidth wide
// run it at 6 ksps.
const (
	nrRate       = 12000.0
	nrHalveWidth = rf.Hz(2700)
)

type nrKey struct {
	name  string
	halve bool
}

// reconfigure moves the chain to s. Only stages whose inputs changed are
// touched, so filter state survives unrelated changes.
func (p *Pipeline) reconfigure(s *Settings) {
	prev := p.active
	p.active = s

	path, err := p.store.Select(s.Mode, s.FilterID)
	if err != nil {
		p.log.Error("filter path", "mode", s.Mode, "filter", s.FilterID, "err", err)
		return
	}

	first := prev == nil
	pathChanged := first || path.ID != p.path.ID
	modeChanged := first || prev.Mode != s.Mode

	if pathChanged {
		if err := p.bank.Apply(path); err != nil {
			p.log.Error("filter path", "id", path.ID, "name", path.Name, "err", err)
		}

		p.path = path
		p.fsDec = path.DecimatedRate(p.cfg.SampleRate)
		p.tel.pathID.Store(int64(path.ID))
		p.log.Info("filter path", "id", path.ID, "name", path.Name, "width", path.Width(), "rate", p.fsDec)
	}

	p.decIQ = (path.DecimateIQ && s.Mode != demod.ModeFM) || s.Mode == demod.ModeAM || s.Mode == demod.ModeSAM
	p.stereo = s.stereo()

	if pathChanged || modeChanged {
		p.muteCount = p.muteBlocks
		p.resetDemod(s.Mode)
		p.notch.Reset()
		p.eqReset()

		if modeChanged {
			p.log.Info("mode", "mode", s.Mode)
		}
	}

	if first || prev.IQ != s.IQ {
		p.iq.SetSettings(s.IQ)
	}

	if first || prev.IFShift != s.IFShift {
		if err := p.shift.SetShift(float64(s.IFShift)); err != nil {
			p.log.Warn("if shift", "shift", s.IFShift, "err", err)
		}
	}

	if first || prev.Zoom != s.Zoom {
		if err := p.zoom.SetMagnify(s.Zoom); err != nil {
			p.log.Warn("zoom", "zoom", s.Zoom, "err", err)
		}
	}

	p.configureDemod(s, prev)

	if first || prev.AGC != s.AGC {
		if err := p.agc.Configure(s.AGC); err != nil {
			p.log.Warn("agc", "err", err)
		}
	}

	agcRate := p.fsDec
	if s.Mode == demod.ModeFM {
		agcRate = p.cfg.SampleRate
	}

	if err := p.agc.SetSampleRate(agcRate); err != nil {
		p.log.Warn("agc", "rate", agcRate, "err", err)
	}

	if pathChanged || modeChanged || prev.EQ != s.EQ {
		p.updateEQ(s.EQ)
	}

	p.postScale = postAGCGain * ssbScale
	if s.Mode == demod.ModeAM || s.Mode == demod.ModeSAM {
		p.postScale = postAGCGain * amScale
	}

	p.notchOn = s.AutoNotch && !p.stereo && s.Mode != demod.ModeCW && s.Mode != demod.ModeFM &&
		!(s.Mode == demod.ModeSAM && p.fsDec == 2*nrRate)

	p.configureNR(s)

	if s.Beep.Enabled && (first || prev.Beep != s.Beep) {
		if err := p.beep.SetFrequency(float64(s.Beep.Frequency)); err != nil {
			p.log.Warn("beep", "frequency", s.Beep.Frequency, "err", err)
		}

		p.beep.Reset()
	}

	p.beep.SetGain(s.Beep.Level)

	p.log.Debug("settings applied", "mode", s.Mode, "path", p.path.Name, "agc", s.AGC.Mode,
		"nr", s.NR.Strategy, "notch", p.notchOn, "stereo", p.stereo)
}

// demodRate is the rate the demodulators see for mode on the active path.
func (p *Pipeline) demodRate(mode demod.Mode) float64 {
	if (p.path.DecimateIQ && mode != demod.ModeFM) || mode == demod.ModeAM || mode == demod.ModeSAM {
		return p.fsDec
	}

	return p.cfg.SampleRate
}

func (p *Pipeline) resetDemod(mode demod.Mode) {
	rate := p.demodRate(mode)

	p.am.SetSampleRate(rate)
	p.am.Reset()

	if err := p.sam.Configure(p.sam.PLL().Config(), rate); err != nil {
		p.log.Warn("sam", "rate", rate, "err", err)
	}

	p.sam.Reset()
	p.fm.Reset()
}

func (p *Pipeline) configureDemod(s, prev *Settings) {
	p.am.SetFadeLeveler(s.FadeLeveler)
	p.sam.SetFadeLeveler(s.FadeLeveler)
	p.sam.SetSideband(s.Sideband)
	p.fm.SetSquelchThreshold(s.FM.Squelch)
	p.fmGain = demod.AudioGain(p.cfg.SampleRate, s.FM.Deviation)

	if prev == nil || prev.FM.Tone != s.FM.Tone {
		if err := p.fm.SetTone(float64(s.FM.Tone)); err != nil {
			p.log.Warn("fm tone", "tone", s.FM.Tone, "err", err)
		}
	}
}

// updateEQ recomputes both biquad stages in the negated layout.
func (p *Pipeline) updateEQ(eq filterpath.EQSettings) {
	b1 := filterpath.Biquad1(eq, p.fsDec)
	b2 := filterpath.Biquad2(eq, p.cfg.SampleRate)

	for ch := range filterpath.Channels {
		p.eqCoeffs = filterpath.SectionsInto(p.eqCoeffs[:0], b1[:])
		p.eq1[ch].UpdateCoefficients(p.eqCoeffs, 1)

		p.eqCoeffs = filterpath.SectionsInto(p.eqCoeffs[:0], b2[:])
		p.eq2[ch].UpdateCoefficients(p.eqCoeffs, 1)
	}
}

func (p *Pipeline) eqReset() {
	for ch := range filterpath.Channels {
		p.eq1[ch].Reset()
		p.eq2[ch].Reset()
	}
}

// configureNR rebuilds the noise reduction strategy when its name or rate
// changed. Strategies run on the mono channel of 12 ksps paths only.
func (p *Pipeline) configureNR(s *Settings) {
	block := p.cfg.BlockSize / p.path.Decimation

	var key nrKey
	if s.NR.Enabled() && !p.stereo && s.Mode != demod.ModeFM && p.fsDec == nrRate {
		key = nrKey{
			name:  s.NR.Strategy,
			halve: p.path.Width() <= nrHalveWidth && block%2 == 0,
		}
	}

	if key == p.nrKey && (key.name == "") == (p.nr == nil) {
		return
	}

	p.stopNR()
	p.nr = nil
	p.nrKey = key
	p.underruns = 0
	p.tel.nrUnderrun.Store(0)

	if key.name == "" {
		return
	}

	params := nr.Params{SampleRate: nrRate, BlockSize: block}
	if key.halve {
		params.SampleRate /= 2
		params.BlockSize /= 2
	}

	st, err := p.registry.New(key.name, params)
	if err != nil {
		p.log.Warn("noise reduction disabled", "strategy", key.name, "err", err)
		return
	}

	if key.halve {
		if st, err = nr.NewDecimated(st, block); err != nil {
			p.log.Warn("noise reduction disabled", "strategy", key.name, "err", err)
			return
		}
	}

	p.nr = st
	p.startNR(st)
	p.log.Info("noise reduction", "strategy", key.name, "rate", params.SampleRate, "post_agc", s.NR.PostAGC)
}

func (p *Pipeline) startNR(st nr.Strategy) {
	sp := spectralOf(st)
	if sp == nil || p.nrCtx == nil {
		return
	}

	ctx, cancel := context.WithCancel(p.nrCtx)
	p.nrCancel = cancel
	sp.SetAsync(true)

	go func() {
		if err := sp.Engine().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.log.Error("noise reduction engine", "err", err)
		}
	}()
}

func (p *Pipeline) stopNR() {
	if p.nrCancel != nil {
		p.nrCancel()
		p.nrCancel = nil
	}
}

// spectralOf returns the spectral strategy inside st, if any.
func spectralOf(st nr.Strategy) *nr.Spectral {
	switch v := st.(type) {
	case *nr.Spectral:
		return v
	case *nr.Decimated:
		sp, _ := v.Inner().(*nr.Spectral)
		return sp
	default:
		return nil
	}
}
