package telegram

import (
	"errors"

	"parent-care-assistant/internal/extraction"
)

const msgGenericFailure = "처리 중 문제가 생겼어요. 잠시 후 다시 시도해 주세요."

// errorMessage returns a user-facing error string for the given error.
func errorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, extraction.ErrEmptyTranscript):
		return "대화 내용이 비어 있어요. 통화 내용을 붙여넣거나 음성 파일을 보내 주세요."
	case errors.Is(err, extraction.ErrTranscriptionFailed):
		return "음성을 글로 옮기지 못했어요. 다른 파일로 다시 시도해 주세요."
	case errors.Is(err, extraction.ErrNoSchedulesSelected):
		return "선택된 일정이 없어요. 예: /confirm 1 3"
	case errors.Is(err, extraction.ErrInvalidSchedule):
		return "선택한 번호를 확인해 주세요. 예: /confirm 1 3"
	case errors.Is(err, extraction.ErrParentNotFound):
		return "연결된 부모님 정보를 찾을 수 없어요. /link 로 다시 연결해 주세요."
	case errors.Is(err, extraction.ErrConversationNotFound):
		return "대화 기록을 찾을 수 없어요."
	case errors.Is(err, extraction.ErrStorageUnavailable):
		return "저장소가 설정되지 않아 일정을 저장할 수 없어요."
	}
	return msgGenericFailure
}
