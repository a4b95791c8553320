package agents

// OpponentClasses returns the agent classes that kind k fights.
func OpponentClasses(k Kind) []TargetClass {
	switch k {
	case KindHuman:
		return []TargetClass{TargetMonster, TargetAnimal}
	case KindMonster:
		return []TargetClass{TargetHuman, TargetAnimal}
	case KindAnimal:
		return []TargetClass{TargetHuman, TargetMonster}
	}
	return nil
}

// UpdateDrives advances an agent's drives by dt seconds from the tick's
// snapshot. It writes only to a, so agents can be updated concurrently.
//
// Attention grows while the nearest living opponent is within line of
// sight and drops to zero once no living opponent remains. Greed does the
// same for unlooted chests. Concern grows unconditionally.
func UpdateDrives(a *Agent, env Env, dt float64) {
	if !a.Alive {
		return
	}

	var opponents []Target
	for _, class := range OpponentClasses(a.Kind) {
		opponents = append(opponents, env.Targets(class)...)
	}
	if t, ok := FindNearest(opponents, a.Position, Dead); ok {
		if a.Position.Dist(t.Position) <= a.LineOfSight {
			a.Drives.Attention.Grow(dt)
		}
	} else if !a.Drives.Attention.Engaged {
		a.Drives.Attention.Reset()
	}

	if t, ok := FindNearest(env.Targets(TargetChest), a.Position, Looted); ok {
		if a.Position.Dist(t.Position) <= a.LineOfSight {
			a.Drives.Greed.Grow(dt)
		}
	} else if !a.Drives.Greed.Engaged {
		a.Drives.Greed.Reset()
	}

	a.Drives.Concern.Grow(dt)
}
