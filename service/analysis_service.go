package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/stoyanh/receipt-scanner/dto"
	"github.com/stoyanh/receipt-scanner/logger"
)

// MinReceiptTextLength guards against near-empty input reaching the LLM;
// roughly one receipt line.
const MinReceiptTextLength = 20

const analysisSystemMessage = "You are a receipt analysis expert. You analyze receipt texts and structure them into tables."

// analysisPrompt instructs the model to produce a semicolon-delimited CSV:
// rows grouped by category, duplicate items merged with summed prices, a
// leading grand-total row, a space after each delimiter and no header row.
const analysisPrompt = `Изпращам текст на касова бележка. Преобразувай цените с десетична точка. Създай таблица с три колони: 'Категория', 'Продукт' и 'Цена с отстъпка'.  Не записвай в колона 'Продукт' текст, който не съществува в текста на бележката. Ако има отстъпка, тя се отнася за предходния продукт и отстъпката се изважда от цената му, в таблицата включи цената след отстъпката. Опитай се за всеки продукт да определиш една от категориите: Хляб, Месо, Колбаси, Варива, Плодзеленчук, Млечни, Продукти, Десерти, Напитки, Санитарни, Разни. Ако не успееш да определиш категорията, задай 'Разни'. Групирай редовете по категории. Обедини стоките с еднакви цени и пресметни общата цена за обединените стоки. Създай таблицата в csv формат с разделител ; и я покажи. Сумирай цените в колона 'Цена с отстъпка' и сравни с ред ОБЩО от бележката, ако има разлика потърси причината и коригирай редовете на таблицата. Първият ред от таблицата да съдържа общата сума на всички продукти във формат 'Общо; ; сума'. След разделителите в таблицата да има задължително интервал и таблицата да не включва имената на колони. В отговора си ми покажи само таблицата, без обяснения как се е получила.

Текст на бележката:
%s`

// Completer abstracts the chat-completion backend
type Completer interface {
	Complete(ctx context.Context, systemMsg, userMsg string) (string, error)
}

// AnalysisService turns free-form receipt text into a categorized,
// semicolon-delimited breakdown. Unlike recognition, failures here are
// always propagated: a fabricated financial breakdown would be worse than
// no result.
type AnalysisService struct {
	llm Completer
	log zerolog.Logger
}

func NewAnalysisService(llm Completer) *AnalysisService {
	return &AnalysisService{
		llm: llm,
		log: logger.WithComponent("analysis"),
	}
}

// Analyze submits the receipt text to the LLM and returns the structured
// table. Input below MinReceiptTextLength is rejected before any API call.
func (s *AnalysisService) Analyze(ctx context.Context, receiptText string) (string, error) {
	trimmed := strings.TrimSpace(receiptText)
	if utf8.RuneCountInString(trimmed) < MinReceiptTextLength {
		return "", dto.ErrTextTooShort
	}

	s.log.Info().Int("chars", len(trimmed)).Msg("analyzing receipt text")

	result, err := s.llm.Complete(ctx, analysisSystemMessage, fmt.Sprintf(analysisPrompt, trimmed))
	if err != nil {
		return "", err
	}

	s.log.Info().Int("result_chars", len(result)).Msg("receipt analysis completed")
	return result, nil
}
