package abilities

import (
	"log"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/transition"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// timelineWindow 时间线保留的时长（秒）
const timelineWindow = 30.0

// taskOwner 持有过渡任务的能力
type taskOwner interface {
	Task() *transition.Task
}

// Runner 能力调度器
//
// 每帧：
//  1. 当前能力先更新，返回 nil 时放弃控制权；
//  2. 没有当前能力时，按优先级（构造顺序）用行为树 Selector 依次更新各能力，
//     第一个返回非 nil 的能力获得控制权；
//  3. 合成器推进一帧，根运动通过移动控制器落实到世界中。
type Runner struct {
	character *Character
	abilities []Ability

	current   Ability
	selected  Ability
	deltaTime float64
	selector  bt.Node

	timeline *Timeline
	time     float64

	camera       config.CameraConfig
	cameraFollow utils.SmoothValue2
	cameraHeight utils.SmoothValue
	cameraReady  bool

	// Debug 打开控制权切换日志
	Debug bool
}

var _ Dispatcher = (*Runner)(nil)

// NewRunner 创建调度器
//
// 参数:
//   - character: 角色上下文
//   - camera: 相机跟随配置
//   - abilities: 按优先级排列的能力（移动能力放在最后）
func NewRunner(character *Character, camera config.CameraConfig, abilities ...Ability) *Runner {
	r := &Runner{
		character: character,
		abilities: abilities,
		timeline:  NewTimeline(timelineWindow),
		camera:    camera,
	}

	leaves := make([]bt.Node, 0, len(abilities))
	for _, ability := range abilities {
		if d, ok := ability.(interface{ SetDispatcher(Dispatcher) }); ok {
			d.SetDispatcher(r)
		}
		leaves = append(leaves, r.leaf(ability))
	}
	r.selector = bt.New(bt.Selector, leaves...)

	return r
}

// leaf 把能力包装成行为树叶子：获得控制权为 Success，否则为 Failure
func (r *Runner) leaf(ability Ability) bt.Node {
	return bt.New(func(children []bt.Node) (bt.Status, error) {
		if result := ability.OnUpdate(r.deltaTime); result != nil {
			r.selected = result
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

// Character 角色上下文
func (r *Runner) Character() *Character { return r.character }

// Abilities 按优先级排列的能力
func (r *Runner) Abilities() []Ability { return r.abilities }

// Current 当前掌握控制权的能力
func (r *Runner) Current() Ability { return r.current }

// Timeline 能力时间线
func (r *Runner) Timeline() *Timeline { return r.timeline }

// Time 累计模拟时间（秒）
func (r *Runner) Time() float64 { return r.time }

// Update 调度各能力
func (r *Runner) Update(deltaTime float64) {
	r.deltaTime = deltaTime
	previous := r.current

	if r.current != nil {
		r.current = r.current.OnUpdate(deltaTime)
	}

	if r.current == nil {
		r.selected = nil
		if _, err := r.selector.Tick(); err != nil {
			log.Printf("[Runner] ⚠️ Ability selector error: %v", err)
		}
		r.current = r.selected
	}

	if r.current != nil {
		r.timeline.Record(r.current.Name(), r.time, deltaTime)
		if owner, ok := r.current.(taskOwner); ok {
			r.attachTask(owner.Task())
		}
	}

	if r.Debug && !sameAbility(previous, r.current) {
		log.Printf("[Runner] Control %s -> %s at %.3fs", abilityName(previous), abilityName(r.current), r.time)
	}
	r.time += deltaTime
}

// Tick 完整的一帧：调度能力、推进合成器、应用根运动
func (r *Runner) Tick(deltaTime float64) {
	r.Update(deltaTime)
	r.character.Synthesizer.Update(deltaTime)
	r.ApplyRootMotion(deltaTime)
}

// ApplyRootMotion 让移动控制器追随合成器的根节点，再把解析后的位置写回合成器
//
// 旋转始终取自合成器；位置由控制器决定（碰撞、贴地）。
func (r *Runner) ApplyRootMotion(deltaTime float64) {
	synth := r.character.Synthesizer
	ctrl := r.character.Controller

	root := synth.WorldRootTransform()
	ctrl.Move(root.T.Sub(ctrl.Position()))
	ctrl.Tick(deltaTime)

	synth.SetWorldTransform(utils.NewAffineTransform(ctrl.Position(), root.Q))
}

// CameraFollow 返回平滑后的相机注视点
//
// 当前能力使用根节点跟随时注视控制器位置，否则注视动画根节点；
// 水平与垂直方向分别用临界阻尼弹簧平滑，注视点高于跟随点 HeightOffset。
func (r *Runner) CameraFollow(deltaTime float64) utils.Vec3 {
	var desired utils.Vec3
	if r.current == nil || r.current.UseRootAsCameraFollow() {
		desired = r.character.Controller.Position()
	} else {
		desired = r.character.Synthesizer.WorldRootTransform().T
	}

	if !r.cameraReady {
		r.cameraFollow.X.Current = desired.X
		r.cameraFollow.Y.Current = desired.Z
		r.cameraHeight.Current = desired.Y
		r.cameraReady = true
	}

	r.cameraFollow.CriticallyDampedSpring(utils.Vec2{X: desired.X, Y: desired.Z}, deltaTime, r.camera.HorizontalDamping)
	r.cameraHeight.CriticallyDampedSpring(desired.Y, deltaTime, r.camera.VerticalDamping)

	follow := r.cameraFollow.Value()
	return utils.NewVec3(follow.X, r.cameraHeight.Current+r.camera.HeightOffset, follow.Y)
}

// DispatchContact 按优先级询问各能力是否接管接触
func (r *Runner) DispatchContact(contact utils.AffineTransform, deltaTime float64) Ability {
	for _, ability := range r.abilities {
		if ability.OnContact(contact, deltaTime) {
			if r.Debug {
				log.Printf("[Runner] Contact at (%.2f, %.2f, %.2f) taken by %s",
					contact.T.X, contact.T.Y, contact.T.Z, ability.Name())
			}
			return ability
		}
	}
	return nil
}

// DispatchDrop 按优先级询问各能力是否接管坠落
func (r *Runner) DispatchDrop(deltaTime float64) Ability {
	for _, ability := range r.abilities {
		if ability.OnDrop(deltaTime) {
			if r.Debug {
				log.Printf("[Runner] Drop taken by %s", ability.Name())
			}
			return ability
		}
	}
	return nil
}

func (r *Runner) attachTask(task *transition.Task) {
	record := r.timeline.Current()
	if task == nil || record == nil {
		return
	}
	for _, id := range record.TaskIDs {
		if id == task.ID() {
			return
		}
	}
	r.timeline.AttachTask(task.ID())
}

func sameAbility(a, b Ability) bool {
	return abilityName(a) == abilityName(b)
}

func abilityName(a Ability) string {
	if a == nil {
		return "<none>"
	}
	return a.Name()
}
