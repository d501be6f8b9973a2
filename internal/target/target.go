// Package target describes the 6502 machine model the analyzer scores
// against: register file, zero-page budget, cycle costs and the tunable
// scoring weights. The numbers are empirical; the relative ordering they
// produce is the contract, not the exact values.
package target

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sablelang/sable/internal/ir"
)

// CycleCosts is the instruction cost table used by the estimators.
type CycleCosts struct {
	ZeroPageLoad  int `yaml:"zp_load"`
	AbsoluteLoad  int `yaml:"abs_load"`
	ZeroPageStore int `yaml:"zp_store"`
	AbsoluteStore int `yaml:"abs_store"`
	Call          int `yaml:"call"`
	Return        int `yaml:"return"`
	IndirectCall  int `yaml:"indirect_call"`
	StackPush     int `yaml:"stack_push"`
	StackPull     int `yaml:"stack_pull"`
	Branch        int `yaml:"branch"`
	ArithOp       int `yaml:"arith_op"`
	WordPenalty   int `yaml:"word_penalty"`
}

// Weights holds the scoring constants of the zero-page, register and
// inlining models.
type Weights struct {
	ZPSmallSize   int `yaml:"zp_small_size"`
	ZPHotPath     int `yaml:"zp_hot_path"`
	ZPLoopUse     int `yaml:"zp_loop_use"`
	ZPFrequentUse int `yaml:"zp_frequent_use"`
	ZPLargeSize   int `yaml:"zp_large_size"`

	RegByteSize int `yaml:"reg_byte_size"`
	RegHotPath  int `yaml:"reg_hot_path"`
	RegLoopUse  int `yaml:"reg_loop_use"`

	InlineMaxNodes    int `yaml:"inline_max_nodes"`
	InlineMaxSize     int `yaml:"inline_max_size"`
	InlineSmallBody   int `yaml:"inline_small_body"`
	InlineLeaf        int `yaml:"inline_leaf"`
	InlineLoopPenalty int `yaml:"inline_loop_penalty"`

	EfficientCallCycles int `yaml:"efficient_call_cycles"`
}

// Profile is a target description. The zero value is not usable; start
// from Default6502 and tune.
type Profile struct {
	Name           string     `yaml:"name"`
	RegisterParams int        `yaml:"register_params"`
	ZeroPageBudget int        `yaml:"zero_page_budget"`
	Costs          CycleCosts `yaml:"costs"`
	Weights        Weights    `yaml:"weights"`
}

// Default6502 returns the built-in MOS 6502 profile.
func Default6502() *Profile {
	return &Profile{
		Name:           "mos6502",
		RegisterParams: 2,
		ZeroPageBudget: 256,
		Costs: CycleCosts{
			ZeroPageLoad:  3,
			AbsoluteLoad:  4,
			ZeroPageStore: 3,
			AbsoluteStore: 4,
			Call:          6,
			Return:        6,
			IndirectCall:  11,
			StackPush:     3,
			StackPull:     4,
			Branch:        3,
			ArithOp:       2,
			WordPenalty:   2,
		},
		Weights: Weights{
			ZPSmallSize:   30,
			ZPHotPath:     40,
			ZPLoopUse:     15,
			ZPFrequentUse: 15,
			ZPLargeSize:   60,

			RegByteSize: 40,
			RegHotPath:  30,
			RegLoopUse:  15,

			InlineMaxNodes:    40,
			InlineMaxSize:     32,
			InlineSmallBody:   50,
			InlineLeaf:        25,
			InlineLoopPenalty: 40,

			EfficientCallCycles: 30,
		},
	}
}

// Load parses a tuned profile on top of the 6502 defaults.
func Load(src []byte) (*Profile, error) {
	profile := Default6502()
	if err := yaml.Unmarshal(src, profile); err != nil {
		return nil, fmt.Errorf("target profile: %w", err)
	}
	return profile, nil
}

// Marshal renders the profile for tooling that wants to dump or edit it.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Sizeof returns the backing store size of a type in bytes.
func (p *Profile) Sizeof(t ir.Type) int {
	switch t := ir.ToUnderlying(t).(type) {
	case *ir.BasicType:
		switch t.Kind() {
		case ir.TByte, ir.TBool:
			return 1
		case ir.TWord:
			return 2
		}
		return 0
	case *ir.ArrayType:
		return t.Size * p.Sizeof(t.Elem)
	case *ir.CallbackType:
		// Function pointer: 16-bit address.
		return 2
	case *ir.NamedType:
		size := 0
		for _, field := range t.Fields {
			size += p.Sizeof(field.T)
		}
		return size
	}
	return 0
}
