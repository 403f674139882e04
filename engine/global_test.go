package engine

import (
	"testing"

	"github.com/sabaki-audio/gbtracker/data"
	"github.com/stretchr/testify/assert"
)

func TestAdvanceRowDefaultWrapsPattern(t *testing.T) {
	order := data.NewOrder()
	order.Insert(1, data.OrderRow{})
	g := &GlobalState{}
	g.RowIndex = 3
	g.advanceRow(order, 4)
	assert.Equal(t, 0, g.RowIndex)
	assert.Equal(t, 1, g.OrderIndex)
}

func TestAdvanceRowPatternGoto(t *testing.T) {
	order := data.NewOrder()
	order.Insert(1, data.OrderRow{})
	order.Insert(2, data.OrderRow{})
	g := &GlobalState{}
	g.setPatternEffect(data.Effect{Type: data.EffectPatternGoto, Param: 1})
	g.advanceRow(order, 16)
	assert.Equal(t, 1, g.OrderIndex)
	assert.Equal(t, 0, g.RowIndex)
}

func TestAdvanceRowPatternHalt(t *testing.T) {
	order := data.NewOrder()
	g := &GlobalState{}
	g.setPatternEffect(data.Effect{Type: data.EffectPatternHalt})
	g.advanceRow(order, 16)
	assert.True(t, g.Halted)
}

func TestSetPatternEffectKeepsFirst(t *testing.T) {
	g := &GlobalState{}
	g.setPatternEffect(data.Effect{Type: data.EffectPatternGoto, Param: 1})
	g.setPatternEffect(data.Effect{Type: data.EffectPatternHalt})
	assert.Equal(t, data.EffectPatternGoto, g.patternCommand)
}
