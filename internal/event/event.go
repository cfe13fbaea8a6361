package event

import (
	"github.com/d60-Lab/flare/internal/model"
)

// Kind 领域事件类型（封闭集合，新增事件需同时更新 String）
type Kind int

const (
	KindPostReacted Kind = iota + 1
	KindConversionPrompted
	KindConversionSuggested
	KindAutoConverted
	KindConvertedToEvent
	KindInvitationMigrated
)

func (k Kind) String() string {
	switch k {
	case KindPostReacted:
		return "post_reacted"
	case KindConversionPrompted:
		return "post_conversion_prompted"
	case KindConversionSuggested:
		return "post_conversion_suggested"
	case KindAutoConverted:
		return "post_auto_converted"
	case KindConvertedToEvent:
		return "post_converted_to_event"
	case KindInvitationMigrated:
		return "post_invitation_migrated"
	default:
		return "unknown"
	}
}

// Event 领域事件（一次创建，不可变，分发后即弃）
type Event interface {
	Kind() Kind
}

// PostReacted 动态收到反应（附当次评估结果）
type PostReacted struct {
	Post        *model.Post
	Reaction    *model.PostReaction
	Eligibility model.Eligibility
}

func (PostReacted) Kind() Kind { return KindPostReacted }

// ConversionPrompted 显式提示路径（threshold: soft / strong）
type ConversionPrompted struct {
	Post          *model.Post
	Threshold     string
	ReactionCount int
}

func (ConversionPrompted) Kind() Kind { return KindConversionPrompted }

// ConversionSuggested 首次越过软阈值
type ConversionSuggested struct {
	Post        *model.Post
	Eligibility model.Eligibility
}

func (ConversionSuggested) Kind() Kind { return KindConversionSuggested }

// AutoConverted 越过硬阈值
type AutoConverted struct {
	Post        *model.Post
	Eligibility model.Eligibility
}

func (AutoConverted) Kind() Kind { return KindAutoConverted }

// ConvertedToEvent 动态已转化为活动
type ConvertedToEvent struct {
	Post       *model.Post
	Activity   *model.Activity
	Conversion *model.PostConversion
}

func (ConvertedToEvent) Kind() Kind { return KindConvertedToEvent }

// InvitationMigrated 动态邀请已迁移到活动
type InvitationMigrated struct {
	Invitation *model.PostInvitation
	Activity   *model.Activity
}

func (InvitationMigrated) Kind() Kind { return KindInvitationMigrated }
