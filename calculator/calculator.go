// Package calculator evaluates aperture macro modifier expressions such as "$1x0.75" or "($2+0.1)/2".
package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyExpression   = errors.New("calculator: empty expression")
	ErrUnbalanced        = errors.New("calculator: unbalanced parentheses")
	ErrBadOperand        = errors.New("calculator: unable to parse operand")
	ErrUndefinedVariable = errors.New("calculator: undefined variable")
)

type OpCode int

const (
	Nop OpCode = iota
	Add
	Mul
)

func (oc OpCode) String() string {
	switch oc {
	case Add:
		return "+ "
	case Mul:
		return "x "
	case Nop:
		return "<nop> "
	default:
		return "bad OpCode "
	}
}

type Stack struct {
	data []int
}

func NewStack() *Stack {
	return &Stack{}
}

func (stack *Stack) Push(val int) {
	stack.data = append(stack.data, val)
}

func (stack *Stack) Pop() (int, error) {
	slen := len(stack.data)
	if slen == 0 {
		return 0, ErrUnbalanced
	}
	retVal := stack.data[slen-1]
	stack.data = stack.data[:slen-1]
	return retVal, nil
}

const (
	leftPar  = '('
	rightPar = ')'
	// prefix of the intermediate results, can not clash with $n modifiers
	tempVarPrefix = "$$"
)

// CalcExpression evaluates the expression.
// vars maps "$n" names to values, the map is not modified.
// The innermost parenthesised group is reduced to a temporary variable until nothing but
// the variable holding the whole expression remains.
func CalcExpression(str string, vars map[string]float64) (float64, error) {
	str = strings.Join(strings.Fields(str), "")
	if len(str) == 0 {
		return 0, ErrEmptyExpression
	}
	source := str

	varStorage := make(map[string]float64, len(vars)+4)
	for k, v := range vars {
		varStorage[k] = v
	}
	var tempVarId = 0
	var valName = ""
	str = "(" + str + ")"
	for str != valName {
		stack := NewStack()
		reduced := false
		for i, r := range str {
			if r == leftPar {
				stack.Push(i)
				continue
			}
			if r == rightPar {
				lPar, err := stack.Pop()
				if err != nil {
					return 0, fmt.Errorf("%w in %q", err, source)
				}
				tf, err := TokenizeFormulae(str[lPar+1:i], varStorage)
				if err != nil {
					return 0, fmt.Errorf("%w in %q", err, source)
				}
				valName = tempVarPrefix + strconv.Itoa(tempVarId)
				tempVarId++
				varStorage[valName] = CalcTokenizedFormulae(tf)
				str = str[:lPar] + valName + str[i+1:]
				reduced = true
				break
			}
		}
		if !reduced {
			return 0, fmt.Errorf("%w in %q", ErrUnbalanced, source)
		}
	}
	return varStorage[valName], nil
}

type TokenizedFormula struct {
	value     float64
	operation OpCode
}

func (tf TokenizedFormula) String() string {
	return strconv.FormatFloat(tf.value, 'f', 10, 64) + " " + tf.operation.String()
}

// TokenizeFormulae splits a flat (parentheses free) expression into values and the operations
// following them. Subtraction is folded into negation of the next value, division into
// inversion of the next value, so only addition and multiplication remain.
func TokenizeFormulae(str string, varStorage map[string]float64) ([]TokenizedFormula, error) {
	if len(str) == 0 {
		return nil, ErrEmptyExpression
	}
	retVal := make([]TokenizedFormula, 0)
	tokenStart := true
	needInvNext := false
	needNegNext := false
	convString := ""

	push := func(opCode OpCode) error {
		floatVal, err := operandValue(convString, varStorage)
		if err != nil {
			return err
		}
		if needInvNext {
			floatVal = 1 / floatVal
		}
		if needNegNext {
			floatVal = -floatVal
		}
		retVal = append(retVal, TokenizedFormula{floatVal, opCode})
		return nil
	}

	for _, r := range str {
		if tokenStart && (r == '+' || r == '-') {
			tokenStart = false
			convString = convString + string(r)
			continue
		}
		var opCode OpCode
		var needNN, needIN bool
		switch r {
		case '+':
			opCode = Add
		case '-':
			opCode = Add
			needNN = true
		case '/':
			opCode = Mul
			needIN = true
		case 'x', 'X':
			opCode = Mul
		default:
			convString = convString + string(r)
			tokenStart = false
			continue
		}
		if err := push(opCode); err != nil {
			return nil, err
		}
		tokenStart = true
		convString = ""
		needInvNext = needIN
		needNegNext = needNN
	}
	// last token
	if err := push(Nop); err != nil {
		return nil, err
	}
	return retVal, nil
}

func operandValue(s string, varStorage map[string]float64) (float64, error) {
	neg := false
	operand := s
	if strings.HasPrefix(operand, "-") {
		neg = true
		operand = operand[1:]
	} else if strings.HasPrefix(operand, "+") {
		operand = operand[1:]
	}
	var retVal float64
	if strings.HasPrefix(operand, "$") {
		val, ok := varStorage[operand]
		if !ok {
			return 0, fmt.Errorf("%w %s", ErrUndefinedVariable, operand)
		}
		retVal = val
	} else {
		val, err := strconv.ParseFloat(operand, 64)
		if err != nil {
			return 0, fmt.Errorf("%w %q", ErrBadOperand, s)
		}
		retVal = val
	}
	if neg {
		retVal = -retVal
	}
	return retVal, nil
}

// CalcTokenizedFormulae sums the products of the tokenized formula
func CalcTokenizedFormulae(tf []TokenizedFormula) float64 {
	retVal := 0.0
	mulVal := 1.0
	for i := range tf {
		mulVal = mulVal * tf[i].value
		if tf[i].operation != Mul {
			retVal = retVal + mulVal
			mulVal = 1.0
		}
	}
	return retVal
}
