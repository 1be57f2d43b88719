package notes

import "strings"

// System prompts sent with every request of the respective stage.
const (
	SummarySystemPrompt = "Du bist ein Experte für technische Dokumentation und Meeting-Zusammenfassungen."
	TodoSystemPrompt    = "Du bist ein Projektmanagement-Experte, der aus Meetings konkrete, actionable TODO-Listen erstellt."
)

const (
	germanTechnicalFocus = `- Fokussiere auf technische Diskussionen und Problemlösungen
- Erwähne verwendete Tools, Methoden und Algorithmen
- Hebe wichtige Entscheidungen und nächste Schritte hervor
- Notiere Code-Änderungen oder technische Konfigurationen`

	germanThesisFocus = `- Fokussiere auf Fortschritte bei der Masterarbeit
- Erwähne konkrete nächste Schritte und Deadlines
- Hebe wichtige Feedback-Punkte hervor
- Notiere technische Diskussionen und Methodenentscheidungen`

	englishTechnicalFocus = `- Focus on technical discussions and problem-solving
- Mention tools, methods, and algorithms used
- Highlight important decisions and next steps
- Note code changes or technical configurations`

	englishThesisFocus = `- Focus on thesis progress and milestones
- Mention concrete next steps and deadlines
- Highlight important feedback points
- Note technical discussions and methodological decisions`
)

const germanSummaryTemplate = `Du bist ein Experte darin, technische Meeting-Transkripte zusammenzufassen.
Erstelle eine strukturierte Zusammenfassung des folgenden {{kind}}-Transkripts.

TRANSKRIPT:
{{transcript}}

ANFORDERUNGEN:
- Verwende die deutsche Sprache für die Zusammenfassung
- Strukturiere mit Markdown (# ## ### und Emojis)
- Beginne mit einem Titel im Format "{{title}}"
- Gliedere in logische Abschnitte mit aussagekräftigen Überschriften
- Verwende Bullet Points für Details
- Hebe wichtige technische Begriffe mit **Bold** hervor
- Filtere "ähs", "ums" und Wiederholungen heraus
{{focus}}

STRUKTUR:
- Titel mit Datum
- Hauptthemen/Abschnitte (mit Emojis wie 🔧 ⚙️ 📊 ✅ ❌ 🚀)
- Wichtige Erkenntnisse
- Nächste Schritte (falls erwähnt)
- Technische Details in separaten Abschnitten

Erstelle eine professionelle, gut lesbare Zusammenfassung:
`

const englishSummaryTemplate = `You are an expert at summarizing technical meeting transcripts.
Create a structured summary of the following {{kind}} transcript.

TRANSCRIPT:
{{transcript}}

REQUIREMENTS:
- Write the summary in the English language
- Structure it with Markdown (# ## ### and emojis)
- Start with a title in the format "{{title}}"
- Split it into logical sections with meaningful headings
- Use bullet points for details
- Highlight important technical terms with **bold**
- Filter out "uhs", "ums" and repetitions
{{focus}}

STRUCTURE:
- Title with date
- Main topics/sections (with emojis like 🔧 ⚙️ 📊 ✅ ❌ 🚀)
- Key insights
- Next steps (if mentioned)
- Technical details in separate sections

Create a professional, easy to read summary:
`

const germanTodoTemplate = `Du bist ein Experte darin, aus Meeting-Transkripten konkrete Aufgaben und Action Items zu extrahieren.
Analysiere das folgende Transkript und erstelle eine strukturierte TODO-Liste.

TRANSKRIPT:
{{transcript}}

AUFGABE:
Extrahiere ALLE konkreten Aufgaben, Aktionspunkte und nächsten Schritte. Fokussiere auf:

✅ KONKRETE AUFGABEN:
- Spezifische Aktivitäten die erledigt werden müssen
- Technische Implementierungen
- Recherche-Aufgaben
- Code-Änderungen
- Tests und Validierungen

📅 DEADLINES & TERMINE:
- Erwähnte Fristen
- Geplante Meetings
- Milestone-Termine

🔧 TECHNISCHE TODOS:
- Bug-Fixes
- Feature-Implementierungen
- Konfigurationsänderungen
- Tool-Setups

📚 LERN-/RECHERCHE-AUFGABEN:
- Literatur lesen
- Technologien evaluieren
- Best Practices recherchieren

AUSGABEFORMAT (Markdown):
# 📋 TODO Liste - {{date}}

## 🚀 Sofortige Aktionen
- [ ] Aufgabe 1 mit konkreter Beschreibung
- [ ] Aufgabe 2 mit Kontext

## 📅 Diese Woche
- [ ] Aufgabe mit Deadline
- [ ] Weitere Aufgabe

## 🔧 Technische Aufgaben
- [ ] Code-Änderung XYZ
- [ ] Test Implementation ABC

## 📚 Recherche & Lernen
- [ ] Thema ABC erforschen
- [ ] Tutorial XYZ durcharbeiten

## 📞 Follow-ups & Meetings
- [ ] Meeting mit Person X planen
- [ ] Feedback einholen von Y

## 💡 Ideen für später
- [ ] Verbesserungsidee 1
- [ ] Feature-Idee 2

Erstelle eine actionable, priorisierte TODO-Liste aus dem Transkript:
`

const englishTodoTemplate = `You are an expert at extracting concrete tasks and action items from meeting transcripts.
Analyze the following transcript and create a structured TODO list.

TRANSCRIPT:
{{transcript}}

TASK:
Extract ALL concrete tasks, action points and next steps. Focus on:

✅ CONCRETE TASKS:
- Specific activities that need to be completed
- Technical implementations
- Research tasks
- Code changes
- Tests and validations

📅 DEADLINES & APPOINTMENTS:
- Mentioned deadlines
- Planned meetings
- Milestone dates

🔧 TECHNICAL TODOS:
- Bug fixes
- Feature implementations
- Configuration changes
- Tool setups

📚 LEARNING/RESEARCH TASKS:
- Literature to read
- Technologies to evaluate
- Best practices to research

OUTPUT FORMAT (Markdown):
# 📋 TODO List - {{date}}

## 🚀 Immediate Actions
- [ ] Task 1 with concrete description
- [ ] Task 2 with context

## 📅 This Week
- [ ] Task with deadline
- [ ] Another task

## 🔧 Technical Tasks
- [ ] Code change XYZ
- [ ] Test implementation ABC

## 📚 Research & Learning
- [ ] Research topic ABC
- [ ] Work through tutorial XYZ

## 📞 Follow-ups & Meetings
- [ ] Plan meeting with person X
- [ ] Get feedback from Y

## 💡 Ideas for Later
- [ ] Improvement idea 1
- [ ] Feature idea 2

Create an actionable, prioritized TODO list from the transcript:
`

// SummaryPrompt builds the user prompt for one transcript summary.
func SummaryPrompt(s Session, transcript string) string {
	var tmpl, kind, focus, title string
	if s.English() {
		tmpl, title = englishSummaryTemplate, "# 📝 Summary ("+s.dateOr("DD.MM.YYYY")+")"
		kind, focus = "Technical Meeting", englishTechnicalFocus
		if s.Thesis {
			kind, focus = "Thesis Coaching Session", englishThesisFocus
		}
	} else {
		tmpl, title = germanSummaryTemplate, "# 📝 Zusammenfassung ("+s.dateOr("DD.MM.YYYY")+")"
		kind, focus = "Technical Meeting", germanTechnicalFocus
		if s.Thesis {
			kind, focus = "Thesis Coaching Session", germanThesisFocus
		}
	}
	return fill(tmpl, map[string]string{
		"kind":       kind,
		"title":      title,
		"focus":      focus,
		"transcript": transcript,
	})
}

// TodoPrompt builds the user prompt for one TODO extraction.
func TodoPrompt(s Session, transcript string) string {
	if s.English() {
		return fill(englishTodoTemplate, map[string]string{"date": s.dateOr("[DATE]"), "transcript": transcript})
	}
	return fill(germanTodoTemplate, map[string]string{"date": s.dateOr("[DATUM]"), "transcript": transcript})
}

// fill substitutes {{key}} placeholders in one pass so transcript text is
// never itself expanded.
func fill(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
