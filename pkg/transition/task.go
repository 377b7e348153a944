package transition

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// State 锚定过渡任务状态
type State int

const (
	// StateInitializing 尚未搜索
	StateInitializing State = iota
	// StateWaiting 正在把根节点混合到目标轨迹上
	StateWaiting
	// StateActive 目标动画已拼接，等待 Escape 帧
	StateActive
	// StateComplete 成功结束
	StateComplete
	// StateFailed 搜索失败
	StateFailed
)

// String 状态名称（用于日志）
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateWaiting:
		return "Waiting"
	case StateActive:
		return "Active"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Task 锚定过渡任务
//
// 状态机：
//
//	Initializing → Waiting | Failed
//	Waiting      → Active
//	Active       → Complete
//
// Complete 与 Failed 是终态。搜索只在第一次 Tick 时进行一次。
// 每个能力同一时间最多持有一个任务；Dispose 之后再 Tick 属于调用方错误，会直接 panic。
type Task struct {
	id uuid.UUID

	db        Database
	synth     Synthesizer
	sequences []motion.PoseSequence
	contact   utils.AffineTransform
	params    SearchParams

	state    State
	plan     *Plan
	match    Match
	disposed bool

	// Debug 打开逐帧日志
	Debug bool
}

// NewTask 创建处于 Initializing 状态的任务
//
// 参数:
//   - synth: 角色的动作合成器
//   - db: 动作库
//   - sequences: 按标签筛选出的候选序列
//   - contact: 世界接触变换
//   - params: 几何容差
func NewTask(synth Synthesizer, db Database, sequences []motion.PoseSequence, contact utils.AffineTransform, params SearchParams) *Task {
	seqs := make([]motion.PoseSequence, len(sequences))
	copy(seqs, sequences)

	return &Task{
		id:        uuid.New(),
		db:        db,
		synth:     synth,
		sequences: seqs,
		contact:   contact,
		params:    params,
		state:     StateInitializing,
	}
}

// ID 任务标识（日志与时间线关联用）
func (t *Task) ID() uuid.UUID { return t.id }

// State 当前状态
func (t *Task) State() State { return t.state }

// Contact 接触变换
func (t *Task) Contact() utils.AffineTransform { return t.contact }

// IsComplete 是否成功结束
func (t *Task) IsComplete() bool { return t.state == StateComplete }

// IsFailed 是否失败
func (t *Task) IsFailed() bool { return t.state == StateFailed }

// IsDone 是否处于终态
func (t *Task) IsDone() bool { return t.IsComplete() || t.IsFailed() }

// IsDisposed 是否已释放
func (t *Task) IsDisposed() bool { return t.disposed }

// Plan 过渡计划；搜索成功之前返回 nil
func (t *Task) Plan() *Plan { return t.plan }

// Match 搜索结果；搜索成功之前为零值
func (t *Task) Match() Match { return t.match }

// Theta 当前混合权重；没有计划时为 0
func (t *Task) Theta() float64 {
	if t.plan == nil {
		return 0
	}
	return t.plan.Theta()
}

// Tick 推进任务一帧并返回新状态
func (t *Task) Tick(deltaTime float64) State {
	if t.disposed {
		panic(fmt.Sprintf("transition task %s ticked after dispose", t.id))
	}

	switch t.state {
	case StateInitializing:
		t.initialize()
	case StateWaiting:
		t.wait(deltaTime)
	case StateActive:
		t.active()
	}
	return t.state
}

// Dispose 立即释放任务持有的计划与候选序列
func (t *Task) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.plan = nil
	t.sequences = nil
	if t.Debug {
		log.Printf("[AnchoredTransition] Task %s disposed in state %s", t.id, t.state)
	}
}

func (t *Task) setState(s State) {
	if t.Debug {
		log.Printf("[AnchoredTransition] Task %s: %s -> %s", t.id, t.state, s)
	}
	t.state = s
}

func (t *Task) initialize() {
	samplingTime := t.synth.Time()
	worldRoot := t.synth.WorldRootTransform()

	match, ok := FindTransition(t.db, samplingTime, worldRoot, t.sequences, t.contact, t.params)
	if !ok {
		log.Printf("[AnchoredTransition] Task %s: no feasible transition among %d sequences", t.id, len(t.sequences))
		t.setState(StateFailed)
		return
	}

	t.match = match
	t.plan = NewPlan(t.db, match, samplingTime, worldRoot)

	if t.Debug {
		log.Printf("[AnchoredTransition] Task %s: match seq=%d source=%d target=%d cost=%.4f blend=%.3fs",
			t.id, match.Sequence, match.SourceIndex, match.TargetIndex, match.Cost, t.plan.TotalDuration)
	}
	t.setState(StateWaiting)
}

func (t *Task) wait(deltaTime float64) {
	if t.plan == nil {
		panic(fmt.Sprintf("transition task %s waiting without a plan", t.id))
	}

	root := t.plan.Advance(t.db, deltaTime)
	t.synth.SetWorldTransform(root)

	if t.plan.Committed() {
		t.synth.Push(t.plan.TargetTimeIndex)
		t.synth.SetWorldTransform(t.plan.TargetRootTransform)
		t.setState(StateActive)
	}
}

func (t *Task) active() {
	if t.EscapeReached() {
		t.setState(StateComplete)
	}
}

// EscapeFrame 当前播放片段的 Escape 帧；没有 Escape 标记时为最后一帧
func (t *Task) EscapeFrame() int {
	segment := t.synth.Time().Segment
	if idx, ok := t.db.FindMarker(segment, motion.MarkerEscape); ok {
		return t.db.GetMarker(idx).Frame
	}
	return t.db.GetSegment(segment).LastFrame()
}

// EscapeReached 播放位置是否已到达 Escape 帧
func (t *Task) EscapeReached() bool {
	return t.synth.Time().Frame >= t.EscapeFrame()
}
