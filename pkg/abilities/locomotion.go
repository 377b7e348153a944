package abilities

import (
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/synthesis"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// 移动能力使用的标签
var (
	TraitLocomotion = motion.NewTrait("Locomotion", "")
	TraitIdle       = motion.NewTrait("Idle", "")
)

// Dispatcher 把轨迹预测中的接触与坠落事件转发给各能力
type Dispatcher interface {
	// DispatchContact 返回接管接触的能力，没有则返回 nil
	DispatchContact(contact utils.AffineTransform, deltaTime float64) Ability
	// DispatchDrop 返回接管坠落的能力，没有则返回 nil
	DispatchDrop(deltaTime float64) Ability
}

// LocomotionAbility 移动能力
//
// 每帧根据摇杆预测未来轨迹：在移动控制器上逐步模拟（Snapshot → MoveTo/Tick → Rewind），
// 途中的碰撞与离地事件转发给其他能力；然后用预测轨迹在合成器中匹配移动或待机动画。
// 它总是愿意掌握控制权，应放在优先级列表的最后。
type LocomotionAbility struct {
	character  *Character
	config     config.LocomotionConfig
	dispatcher Dispatcher

	idleCandidates       []motion.PoseSequence
	locomotionCandidates []motion.PoseSequence

	trajectory             synthesis.Trajectory
	isBraking              bool
	minTrajectoryDeviation float64
}

var _ Ability = (*LocomotionAbility)(nil)

// NewLocomotionAbility 创建移动能力并开始播放第一个待机序列
func NewLocomotionAbility(character *Character, cfg config.LocomotionConfig) *LocomotionAbility {
	lib := character.Library
	l := &LocomotionAbility{
		character:              character,
		config:                 cfg,
		idleCandidates:         lib.Query(TraitLocomotion).And(TraitIdle).Sequences(),
		locomotionCandidates:   lib.Query(TraitLocomotion).Except(TraitIdle).Sequences(),
		minTrajectoryDeviation: cfg.MinTrajectoryDeviation,
	}
	character.Synthesizer.PlayFirstSequence(l.idleCandidates)
	return l
}

// SetDispatcher 设置接触事件的转发目标
func (l *LocomotionAbility) SetDispatcher(d Dispatcher) { l.dispatcher = d }

// Name 能力名称
func (l *LocomotionAbility) Name() string { return "Locomotion" }

// UseRootAsCameraFollow 移动时相机跟随控制器位置
func (l *LocomotionAbility) UseRootAsCameraFollow() bool { return true }

// OnContact 移动能力自身不响应接触
func (l *LocomotionAbility) OnContact(contact utils.AffineTransform, deltaTime float64) bool {
	return false
}

// OnDrop 移动能力自身不响应坠落
func (l *LocomotionAbility) OnDrop(deltaTime float64) bool { return false }

// Trajectory 最近一次预测的轨迹（根空间）
func (l *LocomotionAbility) Trajectory() synthesis.Trajectory { return l.trajectory }

// IsBraking 是否处于刹车状态
func (l *LocomotionAbility) IsBraking() bool { return l.isBraking }

// MinTrajectoryDeviation 最近一次使用的轨迹偏差阈值
func (l *LocomotionAbility) MinTrajectoryDeviation() float64 { return l.minTrajectoryDeviation }

// OnUpdate 预测轨迹、转发事件并匹配动画
func (l *LocomotionAbility) OnUpdate(deltaTime float64) Ability {
	synth := l.character.Synthesizer
	input := l.character.Input

	stick := input.Stick()
	direction := utils.NewVec3(stick.X, 0, stick.Y)
	moveIntensity := math.Min(direction.Length(), 1)
	idle := moveIntensity < 1e-6

	desiredSpeed := 0.0
	if idle {
		if !l.isBraking && synth.CurrentVelocity().Length() < l.config.BrakingSpeed {
			l.isBraking = true
		}
	} else {
		l.isBraking = false
		speed := l.config.DesiredSpeedSlow
		if input.AButton {
			speed = l.config.DesiredSpeedFast
		}
		desiredSpeed = moveIntensity * speed
	}

	l.minTrajectoryDeviation = l.trajectoryDeviationThreshold()

	contactAbility := l.predict(direction, desiredSpeed, deltaTime)

	if !(idle && synth.MatchPose(l.idleCandidates, l.config.IdleThreshold)) {
		synth.MatchPoseAndTrajectory(l.locomotionCandidates, l.trajectory, l.config.Responsiveness, l.minTrajectoryDeviation)
	}

	if contactAbility != nil {
		return contactAbility
	}
	return l
}

// trajectoryDeviationThreshold 刹车时提高阈值让停步动画播完；
// 非移动片段播到末尾时降为 0 强制跳转，否则角色会停在最后一帧
func (l *LocomotionAbility) trajectoryDeviationThreshold() float64 {
	lib := l.character.Library
	t := l.character.Synthesizer.Time()

	if lib.SegmentHasTrait(t.Segment, TraitLocomotion) {
		if l.isBraking {
			return l.config.BrakingTrajectoryDeviation
		}
		return l.config.MinTrajectoryDeviation
	}
	if t.Frame >= lib.GetSegment(t.Segment).LastFrame() {
		return 0
	}
	return l.config.MinTrajectoryDeviation
}

// predict 在移动控制器上模拟预测轨迹，返回接管接触或坠落的能力
func (l *LocomotionAbility) predict(direction utils.Vec3, desiredSpeed, deltaTime float64) Ability {
	synth := l.character.Synthesizer
	lib := l.character.Library
	ctrl := l.character.Controller

	worldRoot := synth.WorldRootTransform()
	prediction := NewTrajectoryPrediction(worldRoot, synth.CurrentVelocity(), direction, desiredSpeed,
		lib.SampleRate(), lib.TimeHorizon(), l.config.VelocityPercentage, l.config.ForwardPercentage)

	ctrl.Snapshot()

	var contactAbility Ability
	attemptTransition := true
	transform := utils.AffineIdentity

	for prediction.Push(transform) {
		transform = prediction.Advance()

		ctrl.MoveTo(worldRoot.TransformPoint(transform.T))
		ctrl.Tick(prediction.Step())

		closure := ctrl.Current()
		if closure.IsColliding && attemptTransition {
			contactPoint := closure.ContactPoint
			contactPoint.Y = ctrl.Position().Y

			q := worldRoot.Q.Mul(transform.Q)
			q = utils.FromToRotation(q.ZAxis(), closure.ContactNormal).Mul(q).Normalize()
			contact := utils.NewAffineTransform(contactPoint, q)

			if contactAbility == nil && l.dispatcher != nil {
				contactAbility = l.dispatcher.DispatchContact(contact, deltaTime)
			}
			attemptTransition = false
		} else if !closure.IsGrounded {
			if contactAbility == nil && l.dispatcher != nil {
				contactAbility = l.dispatcher.DispatchDrop(deltaTime)
			}
		}

		transform.T = worldRoot.InverseTransformPoint(ctrl.Position())
	}

	ctrl.Rewind()
	l.trajectory = prediction.Trajectory()
	return contactAbility
}
