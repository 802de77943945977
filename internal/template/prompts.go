package template

import "fmt"

// Prompt name constants, one per LLM role. They match the [llm.<name>]
// configuration sections.
const (
	CoverLetters    = "cover_letters"
	VerifyRelevance = "verify_relevance"
	ChatReply       = "chat_reply"
	ResumeBuilder   = "resume_builder"
)

// ---------------------------------------------------------------------------
// Name type - represents a validated prompt name
// ---------------------------------------------------------------------------

// Name is a validated prompt name. The zero value is invalid and must not
// be used with Prompt().
type Name struct {
	name string
}

// Pre-parsed names.
var (
	CoverLettersName    = Name{name: CoverLetters}
	VerifyRelevanceName = Name{name: VerifyRelevance}
	ChatReplyName       = Name{name: ChatReply}
	ResumeBuilderName   = Name{name: ResumeBuilder}
)

// ParseName validates a prompt name.
func ParseName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("prompt name cannot be empty: %w", ErrUnknown)
	}
	if _, ok := prompts[s]; !ok {
		return Name{}, fmt.Errorf("unknown prompt %q: %w", s, ErrUnknown)
	}
	return Name{name: s}, nil
}

// String returns the prompt name.
func (n Name) String() string {
	return n.name
}

// IsZero reports whether no name is set.
func (n Name) IsZero() bool {
	return n.name == ""
}

// Prompt returns the built-in system prompt.
// Panics if called on zero value.
func (n Name) Prompt() string {
	if n.name == "" {
		panic("template.Name.Prompt called on zero value")
	}
	return prompts[n.name]
}

// Names returns the prompt names in configuration order.
func Names() []string {
	return []string{CoverLetters, VerifyRelevance, ChatReply, ResumeBuilder}
}

// prompts are the built-in system prompts, used when the configuration
// leaves prompts.system empty. The candidate blurb is appended at run time.
var prompts = map[string]string{
	CoverLetters:    coverLettersPrompt,
	VerifyRelevance: verifyRelevancePrompt,
	ChatReply:       chatReplyPrompt,
	ResumeBuilder:   resumeBuilderPrompt,
}

const coverLettersPrompt = `Ты пишешь сопроводительные письма к откликам на вакансии от лица кандидата.

Правила:
- 4-8 предложений, деловой, но живой тон
- Свяжи опыт кандидата с требованиями вакансии, ничего не выдумывай
- Без приветствия с именем и без подписи
- Без markdown и списков
- Закончи письмо маркером <END>

Информация о кандидате:`

const verifyRelevancePrompt = `Ты оцениваешь, подходит ли вакансия кандидату.

Правила:
- Сравни требования вакансии с опытом и навыками кандидата
- Ответ начинается со слова "да" или "нет", затем одно короткое предложение с причиной
- Закончи ответ маркером <END>

Информация о кандидате:`

const chatReplyPrompt = `Ты помогаешь кандидату отвечать работодателю в чате отклика.

Правила:
- Ответ короткий и вежливый, 1-4 предложения
- Учитывай историю переписки: "<-" сообщения работодателя, "->" сообщения кандидата
- Если кандидат дал указание, следуй ему
- Без markdown
- Закончи ответ маркером <END>

Информация о кандидате:`

const resumeBuilderPrompt = `Ты составляешь краткое описание кандидата по его резюме.

Правила:
- 5-10 предложений от третьего лица
- Роли, ключевые навыки, стаж, заметные проекты, образование, языки
- Только факты из резюме, ничего не выдумывай
- Без markdown
- Закончи описание маркером <END>`
