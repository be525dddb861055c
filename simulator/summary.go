package simulator

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/legged-robots/quinticwalk/trajectory"
	"github.com/legged-robots/quinticwalk/walkengine"
)

// ChannelSummary describes one channel over a whole simulation.
type ChannelSummary struct {
	Channel trajectory.Channel
	MinPos  float64
	MaxPos  float64
	MaxVel  float64
	// 95th percentile of the absolute acceleration
	P95Acc float64
	// largest gaps at half-cycle starts, trunk channels only
	HasJumps   bool
	MaxPosJump float64
	MaxVelJump float64
}

// Summary describes a whole simulation.
type Summary struct {
	Channels []ChannelSummary
	// ticks spent in each state
	StateTicks map[walkengine.State]int
	// support foot changes
	Steps int
	// half-cycles built during the run
	Rebuilds int
}

// Summarize computes a Summary over samples.
func Summarize(samples []Sample) (*Summary, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to summarize")
	}
	sum := &Summary{StateTicks: map[walkengine.State]int{}}
	for i, s := range samples {
		sum.StateTicks[s.State]++
		if i > 0 && s.IsLeftSupport != samples[i-1].IsLeftSupport {
			sum.Steps++
		}
		if s.Rebuilt {
			sum.Rebuilds++
		}
	}

	pos := make(stats.Float64Data, len(samples))
	vel := make(stats.Float64Data, len(samples))
	acc := make(stats.Float64Data, len(samples))
	for _, ch := range trajectory.Channels() {
		for i, s := range samples {
			pos[i] = s.Pos[ch]
			vel[i] = math.Abs(s.Vel[ch])
			acc[i] = math.Abs(s.Acc[ch])
		}
		cs := ChannelSummary{Channel: ch}
		var err error
		if cs.MinPos, err = pos.Min(); err != nil {
			return nil, errors.Wrapf(err, "%s min", ch)
		}
		if cs.MaxPos, err = pos.Max(); err != nil {
			return nil, errors.Wrapf(err, "%s max", ch)
		}
		if cs.MaxVel, err = vel.Max(); err != nil {
			return nil, errors.Wrapf(err, "%s max velocity", ch)
		}
		if cs.P95Acc, err = acc.Percentile(95); err != nil {
			return nil, errors.Wrapf(err, "%s acceleration percentile", ch)
		}
		if trunk := int(ch - trajectory.TrunkPosX); trunk >= 0 && trunk < walkengine.NumTrunkChannels && sum.Rebuilds > 0 {
			if cs.MaxPosJump, cs.MaxVelJump, err = maxJumps(samples, trunk); err != nil {
				return nil, errors.Wrapf(err, "%s jumps", ch)
			}
			cs.HasJumps = true
		}
		sum.Channels = append(sum.Channels, cs)
	}
	return sum, nil
}

func maxJumps(samples []Sample, trunk int) (pos, vel float64, err error) {
	var posJumps, velJumps stats.Float64Data
	for _, s := range samples {
		if s.Rebuilt {
			posJumps = append(posJumps, s.TrunkJumps[trunk].Pos)
			velJumps = append(velJumps, s.TrunkJumps[trunk].Vel)
		}
	}
	if pos, err = posJumps.Max(); err != nil {
		return 0, 0, err
	}
	vel, err = velJumps.Max()
	return pos, vel, err
}

// Write prints the summary as two tables, state ticks then channels.
func (s *Summary) Write(w io.Writer) error {
	states := table.NewWriter()
	states.SetOutputMirror(w)
	states.AppendHeader(table.Row{"State", "Ticks"})
	for st := walkengine.StateIdle; st <= walkengine.StateStopMovement; st++ {
		if n := s.StateTicks[st]; n > 0 {
			states.AppendRow(table.Row{st.String(), n})
		}
	}
	states.AppendFooter(table.Row{"steps", s.Steps})
	states.AppendFooter(table.Row{"half-cycles", s.Rebuilds})
	states.Render()

	channels := table.NewWriter()
	channels.SetOutputMirror(w)
	channels.AppendHeader(table.Row{"Channel", "Min", "Max", "Max |vel|", "P95 |acc|", "Max pos jump", "Max vel jump"})
	for _, c := range s.Channels {
		posJump, velJump := "-", "-"
		if c.HasJumps {
			posJump, velJump = fmt.Sprintf("%.2e", c.MaxPosJump), fmt.Sprintf("%.2e", c.MaxVelJump)
		}
		channels.AppendRow(table.Row{
			c.Channel.String(),
			fmt.Sprintf("%.4f", c.MinPos),
			fmt.Sprintf("%.4f", c.MaxPos),
			fmt.Sprintf("%.4f", c.MaxVel),
			fmt.Sprintf("%.4f", c.P95Acc),
			posJump,
			velJump,
		})
	}
	channels.Render()
	return nil
}
