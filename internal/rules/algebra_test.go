package rules

import (
	"testing"

	"multrait/internal/types"
)

// derive matches the pair against the frozen table and applies the
// winning non-fallback rule.
func derive(t *testing.T, in *types.Interner, reg *Registry, l, r types.TypeID) types.TypeID {
	t.Helper()
	rule, err := reg.Match(l, r)
	if err != nil {
		t.Fatalf("Match(%s, %s): %v", types.Label(in, l), types.Label(in, r), err)
	}
	if rule.IsFallback() {
		t.Fatalf("expected family match for %s * %s, got fallback",
			types.Label(in, l), types.Label(in, r))
	}
	id, ok := rule.Derive(l, r)
	if !ok {
		t.Fatalf("rule %q failed to derive %s * %s",
			rule.Name, types.Label(in, l), types.Label(in, r))
	}
	return id
}

func expectFallback(t *testing.T, in *types.Interner, reg *Registry, l, r types.TypeID) {
	t.Helper()
	rule, err := reg.Match(l, r)
	if err != nil {
		t.Fatalf("Match(%s, %s): %v", types.Label(in, l), types.Label(in, r), err)
	}
	if !rule.IsFallback() {
		t.Fatalf("expected fallback for %s * %s, got %q",
			types.Label(in, l), types.Label(in, r), rule.Name)
	}
}

func TestComplexFamily(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	reg := Default(in)
	reg.Freeze()

	cplx32 := in.Intern(types.MakeComplex(bt.F32))
	cplx64 := in.Intern(types.MakeComplex(bt.F64))
	cplxI16 := in.Intern(types.MakeComplex(bt.I16))

	tests := []struct {
		name string
		l, r types.TypeID
		want types.TypeID
	}{
		{"complex_f32_x_i64", cplx32, bt.I64, cplx64},
		{"i64_x_complex_f32", bt.I64, cplx32, cplx64},
		{"complex_f32_x_f32", cplx32, bt.F32, cplx32},
		{"complex_x_complex", cplx32, cplx64, cplx64},
		{"complex_sym", cplx64, cplx32, cplx64},
		{"complex_int_elem", cplxI16, bt.U16, in.Intern(types.MakeComplex(bt.I32))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := derive(t, in, reg, tt.l, tt.r)
			if got != tt.want {
				t.Fatalf("%s * %s = %s, want %s",
					types.Label(in, tt.l), types.Label(in, tt.r),
					types.Label(in, got), types.Label(in, tt.want))
			}
		})
	}
}

func TestComplexBoolHasNoDerivation(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	reg := Default(in)
	reg.Freeze()

	cplx32 := in.Intern(types.MakeComplex(bt.F32))

	// bool is not numeric, so no complex rule matches and the pair
	// falls back
	expectFallback(t, in, reg, cplx32, bt.Bool)
	expectFallback(t, in, reg, bt.Bool, cplx32)
}

func TestVectorRules(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	reg := Standard(in)
	reg.Freeze()

	cplx32 := in.Intern(types.MakeComplex(bt.F32))
	vecF32x3 := in.Intern(types.MakeVector(bt.F32, 3))
	vecF64x3 := in.Intern(types.MakeVector(bt.F64, 3))
	vecI32 := in.Intern(types.MakeVector(bt.I32, types.DynamicDim))

	tests := []struct {
		name string
		l, r types.TypeID
		want types.TypeID
	}{
		{"scalar_x_vec", bt.F64, vecF32x3, vecF64x3},
		{"vec_x_scalar", vecF32x3, bt.F64, vecF64x3},
		{"vec_x_vec_same_len", vecF32x3, vecF64x3, vecF64x3},
		{"vec_static_x_dynamic", vecF32x3, vecI32, in.Intern(types.MakeVector(bt.F64, 3))},
		{"vec_dynamic_x_dynamic", vecI32, vecI32, vecI32},
		{"complex_x_vec", cplx32, vecF64x3, in.Intern(types.MakeVector(in.Intern(types.MakeComplex(bt.F64)), 3))},
		{"int_vec_x_int", vecI32, bt.I64, in.Intern(types.MakeVector(bt.I64, types.DynamicDim))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := derive(t, in, reg, tt.l, tt.r)
			if got != tt.want {
				t.Fatalf("%s * %s = %s, want %s",
					types.Label(in, tt.l), types.Label(in, tt.r),
					types.Label(in, got), types.Label(in, tt.want))
			}
		})
	}
}

func TestVectorLengthMismatchFalls(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	reg := Standard(in)
	reg.Freeze()

	vec3 := in.Intern(types.MakeVector(bt.F32, 3))
	vec4 := in.Intern(types.MakeVector(bt.F32, 4))

	expectFallback(t, in, reg, vec3, vec4)
}

func TestMatrixRules(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	reg := Standard(in)
	reg.Freeze()

	mat34 := in.Intern(types.MakeMatrix(bt.F32, 3, 4))
	mat45 := in.Intern(types.MakeMatrix(bt.F64, 4, 5))
	matDyn := in.Intern(types.MakeMatrix(bt.F32, types.DynamicDim, types.DynamicDim))
	vec4 := in.Intern(types.MakeVector(bt.F32, 4))
	vec3 := in.Intern(types.MakeVector(bt.F64, 3))

	tests := []struct {
		name string
		l, r types.TypeID
		want types.TypeID
	}{
		{"scalar_x_mat", bt.F64, mat34, in.Intern(types.MakeMatrix(bt.F64, 3, 4))},
		{"mat_x_scalar", mat34, bt.I16, in.Intern(types.MakeMatrix(bt.F32, 3, 4))},
		{"mat_x_vec", mat34, vec4, in.Intern(types.MakeVector(bt.F32, 3))},
		{"vec_x_mat", vec3, mat34, in.Intern(types.MakeVector(bt.F64, 4))},
		{"mat_x_mat", mat34, mat45, in.Intern(types.MakeMatrix(bt.F64, 3, 5))},
		{"mat_x_dynamic", mat34, matDyn, in.Intern(types.MakeMatrix(bt.F32, 3, types.DynamicDim))},
		{"dynamic_x_vec", matDyn, vec4, in.Intern(types.MakeVector(bt.F32, types.DynamicDim))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := derive(t, in, reg, tt.l, tt.r)
			if got != tt.want {
				t.Fatalf("%s * %s = %s, want %s",
					types.Label(in, tt.l), types.Label(in, tt.r),
					types.Label(in, got), types.Label(in, tt.want))
			}
		})
	}
}

func TestMatrixInnerDimMismatchFalls(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	reg := Standard(in)
	reg.Freeze()

	mat34 := in.Intern(types.MakeMatrix(bt.F32, 3, 4))
	mat35 := in.Intern(types.MakeMatrix(bt.F32, 3, 5))
	vec3 := in.Intern(types.MakeVector(bt.F32, 3))

	// inner dimensions disagree: cols(3x4)=4 vs rows(3x5)=3
	expectFallback(t, in, reg, mat34, mat35)
	// cols(3x4)=4 vs len(vec3)=3
	expectFallback(t, in, reg, mat34, vec3)
}

func TestJoinDim(t *testing.T) {
	tests := []struct {
		a, b   uint32
		want   uint32
		wantOk bool
	}{
		{0, 0, 0, true},
		{0, 3, 3, true},
		{3, 0, 3, true},
		{3, 3, 3, true},
		{3, 4, 0, false},
	}
	for _, tt := range tests {
		got, ok := joinDim(tt.a, tt.b)
		if got != tt.want || ok != tt.wantOk {
			t.Fatalf("joinDim(%d, %d) = (%d, %v), want (%d, %v)",
				tt.a, tt.b, got, ok, tt.want, tt.wantOk)
		}
	}
}
