package hardware

// MotorGroup drives a leader and any number of followers with one command.
type MotorGroup struct {
	Leader    Motor
	Followers []Motor
}

func NewMotorGroup(leader Motor, followers ...Motor) *MotorGroup {
	return &MotorGroup{
		Leader:    leader,
		Followers: followers,
	}
}

func (g *MotorGroup) Set(output float64) {
	g.Leader.Set(output)
	for _, f := range g.Followers {
		f.Set(output)
	}
}

var _ Motor = (*MotorGroup)(nil)
