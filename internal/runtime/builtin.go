package runtime

import (
	"fmt"
	"strconv"
)

// BaseEnvironment returns the environment holding every primitive
// operation, built by extending the empty environment one binding at a
// time. Each call returns a fresh handle, but the handles may be used
// independently without interference since extension never mutates.
func BaseEnvironment() Environment {
	var e Environment

	bind := func(name string, fn BuiltinFn) {
		e = e.ExtendName(name, &BuiltinVal{Name: name, Fn: fn})
	}

	// ---- arithmetic ----

	bind("+", func(args []Value) (Value, error) {
		nums, err := wantNumbers("+", args, 2)
		if err != nil {
			return nil, err
		}
		sum := int64(0)
		for _, n := range nums {
			sum += n
		}
		return IntVal(sum), nil
	})

	bind("-", func(args []Value) (Value, error) {
		nums, err := wantNumbers("-", args, 1)
		if err != nil {
			return nil, err
		}
		if len(nums) == 1 {
			return IntVal(-nums[0]), nil
		}
		out := nums[0]
		for _, n := range nums[1:] {
			out -= n
		}
		return IntVal(out), nil
	})

	bind("*", func(args []Value) (Value, error) {
		nums, err := wantNumbers("*", args, 2)
		if err != nil {
			return nil, err
		}
		out := int64(1)
		for _, n := range nums {
			out *= n
		}
		return IntVal(out), nil
	})

	bind("quotient", func(args []Value) (Value, error) {
		nums, err := wantExactly("quotient", args, 2)
		if err != nil {
			return nil, err
		}
		if nums[1] == 0 {
			return nil, fmt.Errorf("quotient: division by zero")
		}
		return IntVal(nums[0] / nums[1]), nil
	})

	bind("remainder", func(args []Value) (Value, error) {
		nums, err := wantExactly("remainder", args, 2)
		if err != nil {
			return nil, err
		}
		if nums[1] == 0 {
			return nil, fmt.Errorf("remainder: division by zero")
		}
		return IntVal(nums[0] % nums[1]), nil
	})

	bind("add1", func(args []Value) (Value, error) {
		nums, err := wantExactly("add1", args, 1)
		if err != nil {
			return nil, err
		}
		return IntVal(nums[0] + 1), nil
	})

	bind("sub1", func(args []Value) (Value, error) {
		nums, err := wantExactly("sub1", args, 1)
		if err != nil {
			return nil, err
		}
		return IntVal(nums[0] - 1), nil
	})

	bind("abs", func(args []Value) (Value, error) {
		nums, err := wantExactly("abs", args, 1)
		if err != nil {
			return nil, err
		}
		if nums[0] < 0 {
			return IntVal(-nums[0]), nil
		}
		return IntVal(nums[0]), nil
	})

	bind("zero?", func(args []Value) (Value, error) {
		nums, err := wantExactly("zero?", args, 1)
		if err != nil {
			return nil, err
		}
		return BoolVal(nums[0] == 0), nil
	})

	// ---- comparison ----

	compare := func(name string, cmp func(a, b int64) bool) {
		bind(name, func(args []Value) (Value, error) {
			nums, err := wantNumbers(name, args, 2)
			if err != nil {
				return nil, err
			}
			for i := 0; i+1 < len(nums); i++ {
				if !cmp(nums[i], nums[i+1]) {
					return BoolVal(false), nil
				}
			}
			return BoolVal(true), nil
		})
	}
	compare("=", func(a, b int64) bool { return a == b })
	compare("<", func(a, b int64) bool { return a < b })
	compare(">", func(a, b int64) bool { return a > b })
	compare("<=", func(a, b int64) bool { return a <= b })
	compare(">=", func(a, b int64) bool { return a >= b })

	// ---- booleans ----

	bind("not", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, arityError("not", 1, len(args))
		}
		b, ok := args[0].(BoolVal)
		if !ok {
			return nil, fmt.Errorf("not: expects a boolean, given %s", args[0].String())
		}
		return BoolVal(!b), nil
	})

	bind("boolean=?", func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, arityError("boolean=?", 2, len(args))
		}
		a, okA := args[0].(BoolVal)
		b, okB := args[1].(BoolVal)
		if !okA {
			return nil, fmt.Errorf("boolean=?: expects a boolean, given %s", args[0].String())
		}
		if !okB {
			return nil, fmt.Errorf("boolean=?: expects a boolean, given %s", args[1].String())
		}
		return BoolVal(a == b), nil
	})

	// ---- type predicates ----

	typePred := func(name string, test func(Value) bool) {
		bind(name, func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, arityError(name, 1, len(args))
			}
			return BoolVal(test(args[0])), nil
		})
	}
	typePred("number?", func(v Value) bool { _, ok := v.(IntVal); return ok })
	typePred("string?", func(v Value) bool { _, ok := v.(StringVal); return ok })
	typePred("boolean?", func(v Value) bool { _, ok := v.(BoolVal); return ok })
	typePred("empty?", func(v Value) bool { _, ok := v.(EmptyVal); return ok })
	typePred("cons?", func(v Value) bool { _, ok := v.(*ConsVal); return ok })
	typePred("list?", IsList)
	typePred("function?", func(v Value) bool {
		switch v.(type) {
		case *FuncVal, *BuiltinVal:
			return true
		}
		return false
	})

	// ---- strings ----

	bind("string-append", func(args []Value) (Value, error) {
		out := ""
		for _, arg := range args {
			s, ok := arg.(StringVal)
			if !ok {
				return nil, fmt.Errorf("string-append: expects a string, given %s", arg.String())
			}
			out += string(s)
		}
		return StringVal(out), nil
	})

	bind("string=?", func(args []Value) (Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("string=?: expects at least 2 arguments, but found %d", len(args))
		}
		var prev StringVal
		for i, arg := range args {
			s, ok := arg.(StringVal)
			if !ok {
				return nil, fmt.Errorf("string=?: expects a string, given %s", arg.String())
			}
			if i > 0 && s != prev {
				return BoolVal(false), nil
			}
			prev = s
		}
		return BoolVal(true), nil
	})

	bind("string-length", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, arityError("string-length", 1, len(args))
		}
		s, ok := args[0].(StringVal)
		if !ok {
			return nil, fmt.Errorf("string-length: expects a string, given %s", args[0].String())
		}
		return IntVal(len(string(s))), nil
	})

	bind("number->string", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, arityError("number->string", 1, len(args))
		}
		n, ok := args[0].(IntVal)
		if !ok {
			return nil, fmt.Errorf("number->string: expects a number, given %s", args[0].String())
		}
		return StringVal(strconv.FormatInt(int64(n), 10)), nil
	})

	// ---- lists ----

	e = e.ExtendName("empty", EmptyVal{})

	bind("cons", func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, arityError("cons", 2, len(args))
		}
		if !IsList(args[1]) {
			return nil, fmt.Errorf("cons: second argument must be a list, given %s", args[1].String())
		}
		return &ConsVal{First: args[0], Rest: args[1]}, nil
	})

	bind("first", func(args []Value) (Value, error) {
		cell, err := wantCons("first", args)
		if err != nil {
			return nil, err
		}
		return cell.First, nil
	})

	bind("rest", func(args []Value) (Value, error) {
		cell, err := wantCons("rest", args)
		if err != nil {
			return nil, err
		}
		return cell.Rest, nil
	})

	bind("list", func(args []Value) (Value, error) {
		out := Value(EmptyVal{})
		for i := len(args) - 1; i >= 0; i-- {
			out = &ConsVal{First: args[i], Rest: out}
		}
		return out, nil
	})

	bind("length", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, arityError("length", 1, len(args))
		}
		count := int64(0)
		cur := args[0]
		for {
			switch v := cur.(type) {
			case EmptyVal:
				return IntVal(count), nil
			case *ConsVal:
				count++
				cur = v.Rest
			default:
				return nil, fmt.Errorf("length: expects a list, given %s", args[0].String())
			}
		}
	})

	// ---- general ----

	bind("equal?", func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, arityError("equal?", 2, len(args))
		}
		return BoolVal(Equal(args[0], args[1])), nil
	})

	bind("error", func(args []Value) (Value, error) {
		parts := ""
		for _, arg := range args {
			if s, ok := arg.(StringVal); ok {
				parts += string(s)
			} else {
				parts += arg.String()
			}
		}
		return nil, fmt.Errorf("error: %s", parts)
	})

	return e
}

// ---- argument helpers ----

func arityError(name string, want, got int) error {
	if want == 1 {
		return fmt.Errorf("%s: expects 1 argument, but found %d", name, got)
	}
	return fmt.Errorf("%s: expects %d arguments, but found %d", name, want, got)
}

// wantNumbers checks that args holds at least min integers and unwraps them.
func wantNumbers(name string, args []Value, min int) ([]int64, error) {
	if len(args) < min {
		return nil, fmt.Errorf("%s: expects at least %d arguments, but found %d", name, min, len(args))
	}
	nums := make([]int64, len(args))
	for i, arg := range args {
		n, ok := arg.(IntVal)
		if !ok {
			return nil, fmt.Errorf("%s: expects a number, given %s", name, arg.String())
		}
		nums[i] = int64(n)
	}
	return nums, nil
}

// wantExactly checks that args holds exactly n integers and unwraps them.
func wantExactly(name string, args []Value, n int) ([]int64, error) {
	if len(args) != n {
		return nil, arityError(name, n, len(args))
	}
	return wantNumbers(name, args, n)
}

// wantCons checks for a single non-empty list argument.
func wantCons(name string, args []Value) (*ConsVal, error) {
	if len(args) != 1 {
		return nil, arityError(name, 1, len(args))
	}
	cell, ok := args[0].(*ConsVal)
	if !ok {
		return nil, fmt.Errorf("%s: expects a non-empty list, given %s", name, args[0].String())
	}
	return cell, nil
}
