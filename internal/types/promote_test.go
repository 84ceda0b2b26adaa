package types

import "testing"

func TestCommonArithmeticLattice(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()

	tests := []struct {
		name string
		a, b TypeID
		want TypeID
	}{
		// float × float: wider float
		{"f32_f32", bt.F32, bt.F32, bt.F32},
		{"f32_f64", bt.F32, bt.F64, bt.F64},

		// same-sign integers: wider
		{"i8_i8", bt.I8, bt.I8, bt.I8},
		{"i8_i32", bt.I8, bt.I32, bt.I32},
		{"i64_i16", bt.I64, bt.I16, bt.I64},
		{"u8_u32", bt.U8, bt.U32, bt.U32},
		{"u64_u64", bt.U64, bt.U64, bt.U64},

		// signed × unsigned: value-preserving signed container
		{"i32_u8", bt.I32, bt.U8, bt.I32},
		{"i64_u32", bt.I64, bt.U32, bt.I64},
		{"i8_u8", bt.I8, bt.U8, bt.I16},
		{"i16_u16", bt.I16, bt.U16, bt.I32},
		{"i32_u32", bt.I32, bt.U32, bt.I64},
		{"i16_u32", bt.I16, bt.U32, bt.I64},

		// u64 does not fit any signed builtin
		{"i8_u64", bt.I8, bt.U64, bt.F64},
		{"i64_u64", bt.I64, bt.U64, bt.F64},

		// int × float: float wide enough for the int
		{"i8_f32", bt.I8, bt.F32, bt.F32},
		{"i16_f32", bt.I16, bt.F32, bt.F32},
		{"u8_f64", bt.U8, bt.F64, bt.F64},
		{"i32_f32", bt.I32, bt.F32, bt.F64},
		{"i64_f32", bt.I64, bt.F32, bt.F64},
		{"u64_f32", bt.U64, bt.F32, bt.F64},
		{"i64_f64", bt.I64, bt.F64, bt.F64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := in.CommonArithmetic(tt.a, tt.b)
			if !ok {
				t.Fatalf("CommonArithmetic(%s, %s) failed", Label(in, tt.a), Label(in, tt.b))
			}
			if got != tt.want {
				t.Fatalf("CommonArithmetic(%s, %s) = %s, want %s",
					Label(in, tt.a), Label(in, tt.b), Label(in, got), Label(in, tt.want))
			}

			// the lattice is commutative
			rev, ok := in.CommonArithmetic(tt.b, tt.a)
			if !ok || rev != tt.want {
				t.Fatalf("CommonArithmetic(%s, %s) = %s, want %s (swapped operands)",
					Label(in, tt.b), Label(in, tt.a), Label(in, rev), Label(in, tt.want))
			}
		})
	}
}

func TestCommonArithmeticRejectsNonNumeric(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()
	quat := in.InternExtern("quaternion")
	cplx := in.Intern(MakeComplex(bt.F32))

	pairs := []struct {
		name string
		a, b TypeID
	}{
		{"bool_bool", bt.Bool, bt.Bool},
		{"bool_i32", bt.Bool, bt.I32},
		{"f64_bool", bt.F64, bt.Bool},
		{"extern_i32", quat, bt.I32},
		{"complex_f32", cplx, bt.F32},
		{"invalid_i32", NoTypeID, bt.I32},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := in.CommonArithmetic(tt.a, tt.b); ok {
				t.Fatalf("expected failure, got %s", Label(in, got))
			}
		})
	}
}

func TestPromotionIgnoresQualifiers(t *testing.T) {
	// qualifiers land on operands, not on promotion results; callers
	// canonicalize first, so qualified inputs must not leak through
	in := NewInterner()
	bt := in.Builtins()

	qi := in.Canonical(in.Qualify(bt.I64, QualConst|QualRef))
	qf := in.Canonical(in.Qualify(bt.F32, QualVolatile))

	got, ok := in.CommonArithmetic(qi, qf)
	if !ok {
		t.Fatal("promotion failed after canonicalization")
	}
	if got != bt.F64 {
		t.Fatalf("i64 × f32 = %s, want f64", Label(in, got))
	}
}
