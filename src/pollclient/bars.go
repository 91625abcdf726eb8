package pollclient

// Bar is one option's share of the tally as rendered in a results view.
// Width is the display width: a non-zero percentage is clamped to the
// given minimum so tiny shares stay visible, while Percent always keeps
// the true value.
type Bar struct {
	Option   Option
	Votes    int
	Percent  float64
	Width    float64
	Selected bool
}

func (t *Tally) Bars(minWidth float64) []Bar {
	counts, total := t.Counts()
	selected, _ := t.Selected()

	t.mu.Lock()
	options := t.options
	t.mu.Unlock()

	bars := make([]Bar, len(options))
	for i, o := range options {
		pct := Percent(counts[o.ID], total)
		width := pct
		if pct > 0 && width < minWidth {
			width = minWidth
		}
		bars[i] = Bar{
			Option:   o,
			Votes:    counts[o.ID],
			Percent:  pct,
			Width:    width,
			Selected: o.ID == selected,
		}
	}
	return bars
}
