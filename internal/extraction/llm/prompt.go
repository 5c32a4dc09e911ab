package llm

import (
	"fmt"

	"parent-care-assistant/pkg/datemath"
)

const systemPrompt = `당신은 자녀와 부모님의 통화 내용을 분석해 앞으로 챙겨야 할 일정을 정리하는 도우미입니다.
반드시 JSON 객체 하나만 반환하세요. 코드 블록, 설명 문장, 주석을 붙이지 마세요.`

const timeContextTemplate = `[날짜 기준]
- 오늘: %s (%s)
- 내일: %s
- 이번 주: %s ~ %s`

const promptTemplate = `다음은 자녀와 부모(%s)의 통화 내용입니다. 이 대화에서 향후 확인해야 할 일정이나 약속을 추출해주세요.

%s

[통화 내용]
%s

다음 형식의 JSON만 반환해주세요 (코드 블록 없이):

{
  "summary": "통화 내용을 3줄로 요약",
  "keywords": ["주요", "키워드", "최대5개"],
  "mood": "good" | "neutral" | "concerned",
  "schedules": [
    {
      "type": "hospital" | "meeting" | "follow_up" | "check_event" | "send_gift" | "confirm_delivery",
      "topic": "확인할 일정 제목 (예: 병원 검사 결과 확인)",
      "dueDate": "YYYY-MM-DD 형식의 날짜",
      "reason": "왜 이 일정을 확인해야 하는지",
      "confidence": 0.9
    }
  ]
}

일정 추출 규칙:
1. 구체적인 날짜나 일정이 언급된 경우 반드시 추출
2. "다음 주 화요일", "다음 달 3일" 같은 상대적 날짜는 오늘(%s) 기준으로 절대 날짜로 변환
3. 병원 예약, 검사 결과, 친구 만남, 여행, 선물 배송 등 모두 포함
4. 애매한 일정("언젠가", "나중에")은 제외
5. confidence: 날짜가 명확하면 0.9-1.0, 추정이면 0.5-0.8
6. 일정이 없으면 "schedules": [] 로 반환

타입 분류:
- hospital: 병원, 검진, 건강 관련
- meeting: 친구 만남, 동창회, 모임, 방문
- follow_up: "결과 알려달라", "끝나면 전화해", 안부 확인
- check_event: 결혼식, 생일, 기념일 등 특정 이벤트
- send_gift: 선물 준비, 용돈
- confirm_delivery: 택배, 배송 확인`

var koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// buildTimeContext gives the model absolute anchors for relative expressions.
func buildTimeContext(week datemath.Week) string {
	return fmt.Sprintf(timeContextTemplate,
		datemath.FormatDate(week.Today),
		koreanWeekdays[week.Today.Weekday()],
		datemath.FormatDate(week.Tomorrow),
		datemath.FormatDate(week.WeekStart),
		datemath.FormatDate(week.WeekEnd),
	)
}

// buildPrompt renders the user message for one transcript.
func buildPrompt(transcript, parentName string, week datemath.Week) string {
	return fmt.Sprintf(promptTemplate,
		parentName,
		buildTimeContext(week),
		transcript,
		datemath.FormatDate(week.Today),
	)
}
