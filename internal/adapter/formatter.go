package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/group-notice-bot/internal/constants"
	"github.com/kapu/group-notice-bot/internal/domain"
)

var kst = time.FixedZone("KST", 9*60*60)

// ResponseFormatter renders directory results as chat replies
type ResponseFormatter struct {
	prefix string
}

func NewResponseFormatter(prefix string) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "/"
	}
	return &ResponseFormatter{prefix: prefix}
}

func (f *ResponseFormatter) FormatStart() string {
	return f.render("start", map[string]any{"Prefix": f.prefix})
}

func (f *ResponseFormatter) FormatHelp() string {
	return f.render("help", map[string]any{"Prefix": f.prefix})
}

func (f *ResponseFormatter) FormatRegister(res *domain.Result) string {
	switch res.Outcome {
	case domain.OutcomeOK:
		return f.render("registered", res)
	case domain.OutcomeAlreadyRegistered:
		return fmt.Sprintf("ℹ️ 이미 등록되어 있습니다. 다시 등록하려면 먼저 %sunregister 를 사용하세요.", f.prefix)
	case domain.OutcomeInvalidArgument:
		if res.Reason == domain.ReasonUnknownGroup {
			return fmt.Sprintf("❌ 존재하지 않는 그룹입니다. %sgroups 로 그룹 목록을 확인하세요.", f.prefix)
		}
		return f.FormatRegisterUsage()
	}
	return f.FormatOutcome(res)
}

func (f *ResponseFormatter) FormatRegisterUsage() string {
	return fmt.Sprintf("❌ 그룹명을 입력해 주세요.\n예: %sregister ECO-22\n그룹장: %sregister ECO-22 [인증코드]", f.prefix, f.prefix)
}

func (f *ResponseFormatter) FormatUnregister(res *domain.Result) string {
	if res.Outcome == domain.OutcomeOK {
		return "✅ 등록이 취소되었습니다."
	}
	return f.FormatOutcome(res)
}

func (f *ResponseFormatter) FormatMemberList(res *domain.Result) string {
	return f.render("member_list", res)
}

func (f *ResponseFormatter) FormatGroupList(res *domain.Result) string {
	return f.render("group_list", res)
}

func (f *ResponseFormatter) FormatAnnouncement(res *domain.Result) string {
	switch res.Outcome {
	case domain.OutcomeOK:
		return f.render("announcement", map[string]any{
			"Announcement": res.Announcement,
			"PublishedAt":  res.Announcement.PublishedAt.In(kst).Format("2006-01-02 15:04"),
		})
	case domain.OutcomeEmpty:
		if res.Member.HasGroup() {
			return fmt.Sprintf("📭 %s 그룹의 공지가 아직 없습니다.", res.Member.GroupName)
		}
		return "📭 소속 그룹이 없어 확인할 공지가 없습니다."
	}
	return f.FormatOutcome(res)
}

func (f *ResponseFormatter) FormatPublish(res *domain.Result) string {
	switch {
	case res.Outcome == domain.OutcomeOK:
		return fmt.Sprintf("✅ %s 그룹 공지가 등록되었습니다.", res.Announcement.GroupName)
	case res.Reason == domain.ReasonAnnouncementLong:
		return fmt.Sprintf("❌ 공지는 %d자까지 등록할 수 있습니다.", constants.MessageLimits.MaxAnnouncementLength)
	}
	return f.FormatOutcome(res)
}

func (f *ResponseFormatter) FormatClear(res *domain.Result) string {
	switch res.Outcome {
	case domain.OutcomeOK:
		return fmt.Sprintf("🗑 %s 그룹 공지를 삭제했습니다.", res.Member.GroupName)
	case domain.OutcomeEmpty:
		return "📭 삭제할 공지가 없습니다."
	}
	return f.FormatOutcome(res)
}

func (f *ResponseFormatter) FormatCreateGroup(res *domain.Result) string {
	switch res.Outcome {
	case domain.OutcomeOK:
		return fmt.Sprintf("✅ %s 그룹이 생성되었습니다.", res.Group.Name)
	case domain.OutcomeAlreadyExists:
		return "❌ 이미 존재하는 그룹입니다."
	case domain.OutcomeInvalidArgument:
		switch res.Reason {
		case domain.ReasonGroupNameSpace:
			return fmt.Sprintf("❌ 그룹명에는 공백을 넣을 수 없습니다.\n예: %snew_group ECO-22", f.prefix)
		case domain.ReasonGroupNameTooLong:
			return fmt.Sprintf("❌ 그룹명은 %d자까지 입력할 수 있습니다.", constants.MessageLimits.MaxGroupNameLength)
		}
		return fmt.Sprintf("❌ 그룹명을 입력해 주세요.\n예: %snew_group ECO-22", f.prefix)
	}
	return f.FormatOutcome(res)
}

// FormatBroadcast is the text each group member receives for a new announcement.
func (f *ResponseFormatter) FormatBroadcast(a *domain.Announcement) string {
	return f.render("broadcast", map[string]any{"Announcement": a})
}

func (f *ResponseFormatter) FormatBroadcastReport(report *domain.BroadcastReport) string {
	return f.render("broadcast_report", map[string]any{
		"Report":    report,
		"Attempted": report.Attempted(),
	})
}

// FormatOutcome covers the rejections shared by several commands.
func (f *ResponseFormatter) FormatOutcome(res *domain.Result) string {
	switch res.Outcome {
	case domain.OutcomeNotRegistered:
		return fmt.Sprintf("❌ 등록되지 않은 사용자입니다. %sregister 로 먼저 등록해 주세요.", f.prefix)
	case domain.OutcomeForbidden:
		return "⛔ 권한이 없습니다."
	case domain.OutcomeEmptyMessage:
		return fmt.Sprintf("❌ 공지 내용을 입력해 주세요.\n예: %screate_message 내일 시험은 2교시입니다", f.prefix)
	case domain.OutcomeInvalidArgument:
		if res.Member != nil && !res.Member.HasGroup() {
			return f.FormatError("소속 그룹이 없습니다.")
		}
		return f.FormatError("잘못된 요청입니다.")
	case domain.OutcomeOK:
		return "✅ 완료되었습니다."
	}
	return f.FormatError("요청을 처리하지 못했습니다.")
}

func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}

func (f *ResponseFormatter) render(name string, data any) string {
	out, err := executeFormatterTemplate(name, data)
	if err != nil {
		return f.FormatError("응답을 만들지 못했습니다.")
	}
	return out
}
