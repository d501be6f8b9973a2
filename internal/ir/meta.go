package ir

import (
	"github.com/sablelang/sable/internal/token"
)

// AccessFrequency classifies how often a variable is touched.
type AccessFrequency int

// Access frequencies.
const (
	FreqNever AccessFrequency = iota
	FreqRare
	FreqOccasional
	FreqFrequent
	FreqHot
)

var accessFrequencies = [...]string{
	FreqNever:      "never",
	FreqRare:       "rare",
	FreqOccasional: "occasional",
	FreqFrequent:   "frequent",
	FreqHot:        "hot",
}

func (f AccessFrequency) String() string {
	if 0 <= f && f < AccessFrequency(len(accessFrequencies)) {
		return accessFrequencies[f]
	}
	return "never"
}

// AccessPattern classifies the shape of a variable's accesses.
type AccessPattern int

// Access patterns.
const (
	PatternUnused AccessPattern = iota
	PatternSingleUse
	PatternReadHeavy
	PatternWriteHeavy
	PatternBalanced
	PatternHotPath
)

var accessPatterns = [...]string{
	PatternUnused:     "unused",
	PatternSingleUse:  "single_use",
	PatternReadHeavy:  "read_heavy",
	PatternWriteHeavy: "write_heavy",
	PatternBalanced:   "balanced",
	PatternHotPath:    "hot_path",
}

func (p AccessPattern) String() string {
	if 0 <= p && p < AccessPattern(len(accessPatterns)) {
		return accessPatterns[p]
	}
	return "unused"
}

// UsageStats aggregates the expression analyzer's access records for one
// variable.
type UsageStats struct {
	Reads        int
	Writes       int
	Modifies     int
	MaxLoopDepth int
	HotPath      bool
	Frequency    AccessFrequency
	Pattern      AccessPattern
}

func (u UsageStats) Total() int {
	return u.Reads + u.Writes + u.Modifies
}

// ZeroPageTier is the zero-page promotion recommendation.
type ZeroPageTier int

// Zero-page tiers.
const (
	ZPVetoed ZeroPageTier = iota
	ZPAvoid
	ZPLow
	ZPModerate
	ZPHigh
)

var zeroPageTiers = [...]string{
	ZPVetoed:   "vetoed",
	ZPAvoid:    "avoid",
	ZPLow:      "low",
	ZPModerate: "moderate",
	ZPHigh:     "high",
}

func (t ZeroPageTier) String() string {
	if 0 <= t && t < ZeroPageTier(len(zeroPageTiers)) {
		return zeroPageTiers[t]
	}
	return "vetoed"
}

// ZeroPageInfo scores a variable for promotion into the zero page.
// Score is clamped to [0,100]; a veto forces it to zero.
type ZeroPageInfo struct {
	Score  int
	Vetoed bool
	Reason string
	Tier   ZeroPageTier
}

// RegisterClass names a register allocation target.
type RegisterClass int

// Register classes.
const (
	RegNone RegisterClass = iota
	RegAccumulator
	RegIndexX
	RegIndexY
	RegZeroPagePair
)

var registerClasses = [...]string{
	RegNone:         "none",
	RegAccumulator:  "A",
	RegIndexX:       "X",
	RegIndexY:       "Y",
	RegZeroPagePair: "zp_pair",
}

func (r RegisterClass) String() string {
	if 0 <= r && r < RegisterClass(len(registerClasses)) {
		return registerClasses[r]
	}
	return "none"
}

// RegisterInfo scores a variable for register allocation.
type RegisterInfo struct {
	Candidate  bool
	Score      int
	Preferred  RegisterClass
	Alternates []RegisterClass
}

// LifetimeInfo estimates a variable's live range for later interference
// decisions. Duration is in estimated executed statements; locals score
// shorter than globals.
type LifetimeInfo struct {
	DefPoints []token.Position
	ScopeKind ScopeKind
	Duration  int
}

// VarMetadata is the variable analyzer's per-variable output. Computed
// once after expression analysis, then immutable.
type VarMetadata struct {
	Usage    UsageStats
	ZeroPage ZeroPageInfo
	Register RegisterInfo
	Lifetime LifetimeInfo
}

// ComplexityInfo carries the complexity metrics behind inlining
// decisions.
type ComplexityInfo struct {
	NodeCount      int
	CodeSize       int
	Cyclomatic     int
	HasLoops       bool
	HasComplexFlow bool
}

// InlineInfo scores a function for inlining. Factors records the
// reasons behind the score; "callback_function" is a standing
// anti-inlining factor since a callback's identity must stay
// addressable.
type InlineInfo struct {
	Candidate bool
	Score     int
	Factors   []string
}

// CallConvInfo is the parameter-passing cost model: the first small
// parameters ride in registers, the rest go to the emulated stack.
type CallConvInfo struct {
	RegisterParams  int
	StackParams     int
	ParamRegisters  []RegisterClass
	EstimatedCycles int
	Efficient       bool
}

// CallbackInfo carries callback/interrupt specific costs. Nil on
// non-callback functions.
type CallbackInfo struct {
	PreserveRegisters  []RegisterClass
	IndirectCallCycles int
	DispatchOverhead   int
	MaxLatencyCycles   int
}

// AllocationStrategy tags the register-allocation approach suggested
// for a function body.
type AllocationStrategy int

// Allocation strategies.
const (
	AllocBalanced AllocationStrategy = iota
	AllocAggressive
	AllocConservative
)

var allocationStrategies = [...]string{
	AllocBalanced:     "balanced",
	AllocAggressive:   "aggressive",
	AllocConservative: "conservative",
}

func (a AllocationStrategy) String() string {
	if 0 <= a && a < AllocationStrategy(len(allocationStrategies)) {
		return allocationStrategies[a]
	}
	return "balanced"
}

// HintInfo carries 6502 specific codegen hints.
type HintInfo struct {
	ZeroPageBenefit bool
	Strategy        AllocationStrategy
}

// Recommendation is one ranked optimization suggestion with its
// estimated cycle benefit.
type Recommendation struct {
	What    string
	Benefit int
}

// ProfileInfo aggregates the function's estimated resource usage.
type ProfileInfo struct {
	EstimatedCycles int
	StackDepth      int
	RegistersUsed   int
	ZeroPageBytes   int
	Recommendations []Recommendation
}

// FuncMetadata is the function analyzer's per-function output.
type FuncMetadata struct {
	Complexity ComplexityInfo
	Inline     InlineInfo
	CallConv   CallConvInfo
	Callback   *CallbackInfo
	Hints      HintInfo
	Profile    ProfileInfo
}
