package agents

// Drive is an urge that accumulates over time, in [0, Max].
// While engaged, its score is frozen at the value it had on engagement
// so the choice it feeds keeps winning until its action ends.
type Drive struct {
	Value     float64 `json:"value"`
	PerSecond float64 `json:"per_second"`
	Max       float64 `json:"max"`
	Engaged   bool    `json:"engaged"`

	latched float64
}

// DriveMax is the cap used when a drive has none configured.
const DriveMax = 100

// NewDrive creates a drive starting at start and growing perSecond.
func NewDrive(start, perSecond float64) Drive {
	d := Drive{PerSecond: perSecond, Max: DriveMax}
	d.Set(start)
	return d
}

// Set assigns v clamped to [0, Max].
func (d *Drive) Set(v float64) {
	max := d.Max
	if max <= 0 {
		max = DriveMax
	}
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	d.Value = v
}

// Grow adds PerSecond * dt.
func (d *Drive) Grow(dt float64) { d.Set(d.Value + d.PerSecond*dt) }

// Drain removes amount.
func (d *Drive) Drain(amount float64) { d.Set(d.Value - amount) }

// Reset sets the value to zero.
func (d *Drive) Reset() { d.Value = 0 }

// Norm returns Value / Max in [0, 1].
func (d *Drive) Norm() float64 {
	max := d.Max
	if max <= 0 {
		max = DriveMax
	}
	return d.Value / max
}

// Engage freezes the score.
func (d *Drive) Engage() {
	d.Engaged = true
	d.latched = d.Norm()
}

// Disengage unfreezes the score.
func (d *Drive) Disengage() { d.Engaged = false }

// Score implements brain.Scorer.
func (d *Drive) Score() float64 {
	if d.Engaged {
		return d.latched
	}
	return d.Norm()
}

// Drives groups every urge an agent has.
type Drives struct {
	Attention Drive `json:"attention"` // fight
	Greed     Drive `json:"greed"`     // loot
	Concern   Drive `json:"concern"`   // duty
}

// Named returns the drive with the given table name, or nil.
func (d *Drives) Named(name string) *Drive {
	switch name {
	case "attention":
		return &d.Attention
	case "greed":
		return &d.Greed
	case "concern":
		return &d.Concern
	}
	return nil
}
