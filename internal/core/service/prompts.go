package service

import (
	"fmt"
	"strings"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

const guideSystemPrompt = `你是一位经验丰富的旅游规划师，熟悉中国各地的景点、美食、交通和住宿。
请根据用户提供的行程信息，生成一份结构清晰、内容实用的旅游攻略，使用 Markdown 格式，包含以下部分：

## 一、行程概览
## 二、每日行程安排（按日期列出上午、下午、晚上的安排）
## 三、景点推荐（门票、开放时间、游玩时长）
## 四、美食推荐（具体餐厅或街区、人均消费）
## 五、住宿建议（推荐区域和价位）
## 六、交通指南（往返交通和市内交通）
## 七、预算明细（按交通、住宿、餐饮、门票、其他分类）
## 八、注意事项（结合天气给出穿衣和出行建议）

请确保预算合理、路线顺畅，不要编造不存在的景点或餐厅。`

const optimizeSystemPrompt = "你是一位专业的旅游规划助手，擅长根据用户反馈优化旅游攻略。请保持友好、专业的语气。"

const pitfallSystemPrompt = `你是一位熟悉中国各地旅游市场的资深导游，擅长帮助游客识别和避开旅游陷阱。
请针对用户给出的目的地，生成一份 Markdown 格式的避坑指南，包含以下部分：

## 一、常见消费陷阱（购物、餐饮、住宿）
## 二、交通避坑（黑车、绕路、票务）
## 三、景点避坑（假景点、强制消费、排队技巧）
## 四、安全提醒
## 五、实用建议

内容要具体、可操作，避免空泛的描述。`

func guideUserMessage(req domain.TripRequest, weatherInfo, trafficInfo string) string {
	var b strings.Builder
	b.WriteString("请为我的旅行制定一份详细攻略：\n\n")
	fmt.Fprintf(&b, "**目的地**: %s\n", req.Destination)
	fmt.Fprintf(&b, "**出发地**: %s\n", req.Origin)
	fmt.Fprintf(&b, "**出发日期**: %s\n", req.StartDate)
	fmt.Fprintf(&b, "**返回日期**: %s\n", req.EndDate)
	fmt.Fprintf(&b, "**预算**: %.0f 元\n", req.Budget)
	fmt.Fprintf(&b, "**偏好**: %s\n", req.Preferences)
	if weatherInfo != "" {
		fmt.Fprintf(&b, "\n**天气信息**:\n%s\n", weatherInfo)
	}
	if trafficInfo != "" {
		fmt.Fprintf(&b, "\n**交通信息**:\n%s\n", trafficInfo)
	}
	b.WriteString("\n请根据以上信息，为我生成一份详细的旅游攻略。")
	return b.String()
}

func optimizeUserMessage(suggestion, content string) string {
	return fmt.Sprintf(`请根据以下用户建议，优化并重写旅游攻略：

【用户建议】
%s

【原攻略】
%s

请保持原攻略的结构和格式，只根据用户建议进行针对性改进。`, suggestion, content)
}

func pitfallUserMessage(destination, preferences string) string {
	msg := fmt.Sprintf("请为 %s 生成一份详细的旅游避坑指南。", destination)
	if preferences != "" {
		msg += "\n\n用户偏好：" + preferences
	}
	return msg
}
