// 文件路径: internal/order/stage.go
// 模块说明: 订单阶段的定义与前进/后退的纯逻辑，不依赖任何存储。
package order

import (
	"errors"
	"strings"
)

// Stage 是订单状态在存储中的原始取值。
type Stage string

const (
	StagePending   Stage = "Pendente"
	StageConfirmed Stage = "Confirmado"
	StagePreparing Stage = "Em Preparo"
	StageOnTheWay  Stage = "A Caminho"
	StageDelivered Stage = "Entregue"
	StageRejected  Stage = "Recusado"
)

const progressPercent = 20

// Stages is the fixed progress sequence. Recusado is not part of it.
var Stages = [...]Stage{
	StagePending,
	StageConfirmed,
	StagePreparing,
	StageOnTheWay,
	StageDelivered,
}

// ErrRejected 表示订单已被拒绝，不再允许前进或后退。
var ErrRejected = errors.New("order is rejected / 订单已被拒绝")

// ParseStage 将存储值映射为阶段，忽略首尾空白。
func ParseStage(raw string) (Stage, bool) {
	s := Stage(strings.TrimSpace(raw))
	if s == StageRejected {
		return s, true
	}
	for _, st := range Stages {
		if st == s {
			return s, true
		}
	}
	return s, false
}

// Index 返回阶段在 Stages 中的位置，不存在时返回 -1。
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) String() string { return string(s) }

// Progress 描述一张订单在阶段序列中的位置。
type Progress struct {
	Index    int
	Rejected bool
}

// ProgressOf 将存储的状态转换为进度；未知状态回落到第一个阶段。
func ProgressOf(status string) Progress {
	stage, _ := ParseStage(status)
	if stage == StageRejected {
		return Progress{Rejected: true}
	}
	idx := stage.Index()
	if idx < 0 {
		idx = 0
	}
	return Progress{Index: idx}
}

// Stage 返回当前进度对应的阶段。
func (p Progress) Stage() Stage {
	if p.Rejected {
		return StageRejected
	}
	return Stages[p.clamped()]
}

// Percent 返回进度条宽度，第 i 个阶段对应 (i+1)*20。
func (p Progress) Percent() int {
	if p.Rejected {
		return 0
	}
	return (p.clamped() + 1) * progressPercent
}

// AtStart reports whether the order sits on the first stage.
func (p Progress) AtStart() bool { return !p.Rejected && p.clamped() == 0 }

// AtEnd reports whether the order sits on the last stage.
func (p Progress) AtEnd() bool { return !p.Rejected && p.clamped() == len(Stages)-1 }

// Next 返回下一阶段；已在最后阶段时 ok 为 false。
func (p Progress) Next() (Stage, bool) {
	if p.Rejected || p.AtEnd() {
		return "", false
	}
	return Stages[p.clamped()+1], true
}

// Prev 返回上一阶段；已在第一个阶段时 ok 为 false。
func (p Progress) Prev() (Stage, bool) {
	if p.Rejected || p.AtStart() {
		return "", false
	}
	return Stages[p.clamped()-1], true
}

func (p Progress) clamped() int {
	switch {
	case p.Index < 0:
		return 0
	case p.Index >= len(Stages):
		return len(Stages) - 1
	default:
		return p.Index
	}
}
