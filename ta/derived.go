package ta

import "math"

// VWMA is volume-weighted moving average: sma(source*volume)/sma(volume).
// Each internal sma carries its own ring/sum/healing state, per spec.md
// §4.6.6.
type VWMA struct {
	priceVol *SMA
	vol      *SMA
}

func NewVWMA(cfg Config) *VWMA {
	return &VWMA{priceVol: NewSMA(cfg), vol: NewSMA(cfg)}
}

func (v *VWMA) Update(source, volume float64, length int) float64 {
	pv := v.priceVol.Update(source*volume, length)
	vv := v.vol.Update(volume, length)
	if math.IsNaN(pv) || math.IsNaN(vv) || vv == 0 {
		return math.NaN()
	}
	return pv / vv
}

// SWMA is the fixed symmetric four-tap weighted moving average
// (1,2,2,1)/6 of spec.md §4.6.6; it ignores the length parameter (its
// window is always the last four samples).
type SWMA struct {
	buf [4]float64
	n   int
}

func NewSWMA() *SWMA { return &SWMA{} }

func (s *SWMA) Update(source float64) float64 {
	s.buf[0], s.buf[1], s.buf[2], s.buf[3] = s.buf[1], s.buf[2], s.buf[3], source
	if s.n < 4 {
		s.n++
		return math.NaN()
	}
	a, b, c, d := s.buf[0], s.buf[1], s.buf[2], s.buf[3]
	return (a*1 + b*2 + c*2 + d*1) / 6
}

// RSI is the relative strength index of spec.md §4.6.6: gains and losses
// smoothed independently by RMA, with avg_loss == 0 short-circuiting to
// 100 rather than dividing by zero.
type RSI struct {
	gainRMA, lossRMA *EMA
	prevSource       float64
	seeded           bool
}

func NewRSI() *RSI {
	return &RSI{gainRMA: NewRMA(), lossRMA: NewRMA()}
}

func (r *RSI) Update(source float64, length int) float64 {
	if !r.seeded {
		r.prevSource = source
		r.seeded = true
		return math.NaN()
	}

	delta := source - r.prevSource
	r.prevSource = source

	gain := math.Max(delta, 0)
	loss := math.Max(-delta, 0)

	avgGain := r.gainRMA.Update(gain, length)
	avgLoss := r.lossRMA.Update(loss, length)

	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACD is [fast_ema - slow_ema, signal_ema(of that difference), histogram].
type MACD struct {
	fast, slow, signal *EMA
}

func NewMACD() *MACD {
	return &MACD{fast: NewEMA(), slow: NewEMA(), signal: NewEMA()}
}

func (m *MACD) Update(source float64, fastLength, slowLength, signalLength int) (macdLine, signalLine, histogram float64) {
	fastVal := m.fast.Update(source, fastLength)
	slowVal := m.slow.Update(source, slowLength)
	macdLine = fastVal - slowVal
	signalLine = m.signal.Update(macdLine, signalLength)
	histogram = macdLine - signalLine
	return
}

// MOM is momentum: source - history[length bars ago]; NaN until enough
// history exists.
type MOM struct {
	cfg     Config
	history []float64
}

func NewMOM(cfg Config) *MOM { return &MOM{cfg: cfg} }

func (m *MOM) Update(source float64, length int) float64 {
	m.history = append(m.history, source)
	m.history = trimHistory(m.history, length, m.cfg.HistoryCap, m.cfg.HistoryTrimMargin)
	idx := len(m.history) - 1 - length

	if idx < 0 {
		return math.NaN()
	}
	return source - m.history[idx]
}

// CCI is the commodity channel index: (source-sma)/(0.015*mean_abs_deviation).
type CCI struct {
	cfg     Config
	sma     *SMA
	history []float64
}

func NewCCI(cfg Config) *CCI {
	return &CCI{cfg: cfg, sma: NewSMA(cfg)}
}

func (c *CCI) Update(source float64, length int) float64 {
	mean := c.sma.Update(source, length)
	c.history = append(c.history, source)
	c.history = trimHistory(c.history, length, c.cfg.HistoryCap, c.cfg.HistoryTrimMargin)

	if math.IsNaN(mean) || length <= 0 || len(c.history) < length {
		return math.NaN()
	}

	start := len(c.history) - length
	var sumAbs float64
	for _, v := range c.history[start:] {
		sumAbs += math.Abs(v - mean)
	}
	mad := sumAbs / float64(length)
	if mad == 0 {
		return 0
	}
	return (source - mean) / (0.015 * mad)
}

// Stoch is the stochastic oscillator: 100*(source-lowest_low)/(highest_high-lowest_low),
// returning 0 when high equals low over the window.
type Stoch struct {
	highest, lowest *Extreme
}

func NewStoch(cfg Config) *Stoch {
	return &Stoch{highest: NewExtreme(cfg, true), lowest: NewExtreme(cfg, false)}
}

func (s *Stoch) Update(source, high, low float64, length int) float64 {
	hh := s.highest.Update(high, length)
	ll := s.lowest.Update(low, length)
	if math.IsNaN(hh) || math.IsNaN(ll) {
		return math.NaN()
	}
	if hh == ll {
		return 0
	}
	return 100 * (source - ll) / (hh - ll)
}
