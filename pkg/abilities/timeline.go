package abilities

import (
	"github.com/google/uuid"
)

// TimelineRecord 某个能力连续掌握控制权的一段时间
type TimelineRecord struct {
	ID      uuid.UUID
	Ability string
	Start   float64
	End     float64
	// TaskIDs 这段时间内该能力创建的过渡任务
	TaskIDs []uuid.UUID
}

// Duration 时长（秒）
func (r *TimelineRecord) Duration() float64 {
	return r.End - r.Start
}

// Timeline 能力时间线
//
// 同一能力在相邻帧连续掌握控制权时合并为一条记录。
type Timeline struct {
	records []TimelineRecord
	// Window 保留的时长（秒），<= 0 表示不裁剪
	Window float64
}

// NewTimeline 创建只保留最近 window 秒的时间线
func NewTimeline(window float64) *Timeline {
	return &Timeline{Window: window}
}

// Record 记录 ability 在 [time, time+deltaTime] 内掌握控制权
func (t *Timeline) Record(ability string, time, deltaTime float64) {
	if n := len(t.records); n > 0 {
		last := &t.records[n-1]
		if last.Ability == ability && last.End >= time-1e-9 {
			last.End = time + deltaTime
			t.prune(time + deltaTime)
			return
		}
	}

	t.records = append(t.records, TimelineRecord{
		ID:      uuid.New(),
		Ability: ability,
		Start:   time,
		End:     time + deltaTime,
	})
	t.prune(time + deltaTime)
}

// AttachTask 把过渡任务关联到最近一条记录
func (t *Timeline) AttachTask(id uuid.UUID) {
	if n := len(t.records); n > 0 {
		t.records[n-1].TaskIDs = append(t.records[n-1].TaskIDs, id)
	}
}

// Records 按时间顺序返回全部记录
func (t *Timeline) Records() []TimelineRecord {
	return t.records
}

// Current 最近一条记录；没有记录时返回 nil
func (t *Timeline) Current() *TimelineRecord {
	if len(t.records) == 0 {
		return nil
	}
	return &t.records[len(t.records)-1]
}

// prune 丢弃结束时间早于 now-Window 的记录
func (t *Timeline) prune(now float64) {
	if t.Window <= 0 {
		return
	}
	cutoff := now - t.Window
	i := 0
	for i < len(t.records) && t.records[i].End < cutoff {
		i++
	}
	if i > 0 {
		t.records = append(t.records[:0], t.records[i:]...)
	}
}
