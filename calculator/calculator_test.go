package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	src string
	ans float64
}

var src = []testCase{
	{"-2x3", -2 * 3},
	{"-2X-3", -2 * -3},
	{"2x3", 2 * 3},
	{"2x3+4", 2*3 + 4},
	{"4+2x3", 4 + 2*3},
	{"(((-2)))", -2},
	{"2--3", 2 - -3},
	{"2/-3.0", 2 / -3.0},
	{"-2--3", -2 - (-3)},
	{"-2+1-1", -2 + 1 - 1},
	{"2+1-1", 2 + 1 - 1},
	{"-2+1--3", -2 + 1 - (-3)},
	{"-6x9/8", -6 * 9 / 8.0},
	{"-6x9/8x8/-4X787.33", -6 * 9 / 8.0 * 8 / -4 * 787.33},
	{"-6x9/1x-6x9/2/-6x9/3", -6 * 9 / 1 * -6 * 9 / 2 / -6 * 9 / 3},
	{"-1", -1},
	{" 1 + 2 ", 3},
	{"-(2+3)", -5},
	{"(-2x(333+444x4343)/555)-(666-(-777x(888x(-999--1000))))+(11-12)", -697593},
}

func TestCalcExpression(t *testing.T) {
	for _, s := range src {
		result, err := CalcExpression(s.src, nil)
		require.NoError(t, err, s.src)
		assert.InDelta(t, s.ans, result, 1e-9, s.src)
	}
}

func TestCalcExpression_Variables(t *testing.T) {
	vars := map[string]float64{"$1": 0.5, "$2": 4, "$3": -2}
	var testData = []testCase{
		{"$1", 0.5},
		{"$1x0.8", 0.4},
		{"$2/2", 2},
		{"-$3", 2},
		{"($2+$1)x2", 9},
		{"$2x-$1", -2},
		{"$1-$2", -3.5},
	}
	for _, td := range testData {
		result, err := CalcExpression(td.src, vars)
		require.NoError(t, err, td.src)
		assert.InDelta(t, td.ans, result, 1e-12, td.src)
	}
	assert.Len(t, vars, 3, "caller variables must not be modified")
}

func TestCalcExpression_Errors(t *testing.T) {
	var testData = []struct {
		src string
		err error
	}{
		{"", ErrEmptyExpression},
		{"   ", ErrEmptyExpression},
		{"(1+2", ErrUnbalanced},
		{"1+2)", ErrUnbalanced},
		{"1+", ErrBadOperand},
		{"1.2.3", ErrBadOperand},
		{"$4x2", ErrUndefinedVariable},
		{"()", ErrEmptyExpression},
	}
	for _, td := range testData {
		_, err := CalcExpression(td.src, map[string]float64{"$1": 1})
		assert.True(t, errors.Is(err, td.err), "%q: got %v", td.src, err)
	}
}

func TestTokenizeFormulae(t *testing.T) {
	tf, err := TokenizeFormulae("1-2/4x3", nil)
	require.NoError(t, err)
	require.Len(t, tf, 4)
	assert.Equal(t, TokenizedFormula{1, Add}, tf[0])
	assert.Equal(t, TokenizedFormula{-2, Mul}, tf[1])
	assert.Equal(t, TokenizedFormula{0.25, Mul}, tf[2])
	assert.Equal(t, TokenizedFormula{3, Nop}, tf[3])
	assert.Equal(t, -0.5, CalcTokenizedFormulae(tf))
}

func TestStack(t *testing.T) {
	stack := NewStack()
	stack.Push(1)
	stack.Push(2)
	v, err := stack.Pop()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	_, _ = stack.Pop()
	_, err = stack.Pop()
	assert.Equal(t, ErrUnbalanced, err)
}
