package screenplay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slavodej/screenwright/internal/models"
)

func lineTypes(lines []models.ScriptLine) []models.LineType {
	out := make([]models.LineType, len(lines))
	for i, l := range lines {
		out[i] = l.Type
	}
	return out
}

func TestClassifyBlock_ScreenplayBlock(t *testing.T) {
	input := "INT. KITCHEN - DAY\nJOHN\n(whispering)\nWe need to leave now."

	lines := ClassifyBlock(input, "")

	require.Len(t, lines, 4)
	assert.Equal(t, []models.LineType{
		models.LineHeading,
		models.LineCharacter,
		models.LineParenthetical,
		models.LineDialogue,
	}, lineTypes(lines))
}

func TestClassifyLine_HeadingPrefixes(t *testing.T) {
	for _, text := range []string{
		"INT. KITCHEN - DAY",
		"EXT. STREET - NIGHT",
		"INT/EXT. CAR - CONTINUOUS",
		"I/E. TRAIN - DAY",
		"INT./EXT. LOBBY - DUSK",
		"EXT./INT. HOUSE - NIGHT",
	} {
		assert.Equal(t, models.LineHeading, ClassifyLine(text, ""), "text=%q", text)
	}
}

func TestClassifyLine_HeadingRequiresUpperCase(t *testing.T) {
	// Prefix alone is not enough: mixed case falls through.
	assert.Equal(t, models.LineAction, ClassifyLine("Int. kitchen - day", ""))
	assert.Equal(t, models.LineAction, ClassifyLine("INT. The kitchen", ""))
}

func TestClassifyLine_Parenthetical(t *testing.T) {
	assert.Equal(t, models.LineParenthetical, ClassifyLine("(whispering)", ""))
	// Wins over the character-cue rule even for all-caps text.
	assert.Equal(t, models.LineParenthetical, ClassifyLine("(BEAT)", models.LineCharacter))
}

func TestClassifyLine_CharacterCue(t *testing.T) {
	assert.Equal(t, models.LineCharacter, ClassifyLine("JOHN", ""))
	assert.Equal(t, models.LineCharacter, ClassifyLine("SARAH JANE SMITH", ""))
	assert.Equal(t, models.LineCharacter, ClassifyLine("JOHN (CONT'D)", ""))

	// A period disqualifies a cue.
	assert.Equal(t, models.LineAction, ClassifyLine("MR. SMITH", ""))
	// So does exceeding 45 characters.
	long := strings.Repeat("A", 46)
	assert.Equal(t, models.LineAction, ClassifyLine(long, ""))
}

func TestClassifyLine_CueRuleOutranksDialogueContext(t *testing.T) {
	// Short all-caps text after a cue still reads as a cue: the rule
	// table is evaluated strictly top to bottom, and the heuristic
	// accepts this kind of misread.
	assert.Equal(t, models.LineCharacter, ClassifyLine("YES", models.LineCharacter))
	// With a period it falls through to the dialogue-after-cue rule.
	assert.Equal(t, models.LineDialogue, ClassifyLine("YES.", models.LineCharacter))
}

func TestClassifyLine_DialogueAfterCueAndParenthetical(t *testing.T) {
	assert.Equal(t, models.LineDialogue, ClassifyLine("We need to leave now.", models.LineCharacter))
	assert.Equal(t, models.LineDialogue, ClassifyLine("We need to leave now.", models.LineParenthetical))
}

func TestClassifyLine_DialogueContinuation(t *testing.T) {
	assert.Equal(t, models.LineDialogue, ClassifyLine("I don't know what you mean.", models.LineDialogue))
}

func TestClassifyLine_ActionBreaksDialogueRun(t *testing.T) {
	// Transition keywords interrupt a dialogue run.
	for _, text := range []string{
		"Smash cut to the next morning.",
		"Dissolve to black.",
		"Fade out.",
		"Pan to the doorway.",
		"Reveal: the room is empty.",
	} {
		assert.Equal(t, models.LineAction, ClassifyLine(text, models.LineDialogue), "text=%q", text)
	}

	// So does a subject followed by a third-person action verb.
	for _, text := range []string{
		"He turns to the window.",
		"She walks out of the room.",
		"John looks at her.",
		"The man stares blankly.",
		"Sarah enters quietly.",
	} {
		assert.Equal(t, models.LineAction, ClassifyLine(text, models.LineDialogue), "text=%q", text)
	}
}

func TestClassifyLine_DefaultAction(t *testing.T) {
	assert.Equal(t, models.LineAction, ClassifyLine("The rain hammers the tin roof.", ""))
	assert.Equal(t, models.LineAction, ClassifyLine("A long silence.", models.LineHeading))
}

func TestClassifyBlock_DropsBlankSegments(t *testing.T) {
	lines := ClassifyBlock("JOHN\n\n   \nHello.\n", "")

	require.Len(t, lines, 2)
	assert.Equal(t, models.LineCharacter, lines[0].Type)
	assert.Equal(t, models.LineDialogue, lines[1].Type)
}

func TestClassifyBlock_ContentTrimmedOriginalKept(t *testing.T) {
	lines := ClassifyBlock("  JOHN  ", "")

	require.Len(t, lines, 1)
	assert.Equal(t, "JOHN", lines[0].Content)
	assert.Equal(t, "  JOHN  ", lines[0].OriginalText)
}

func TestClassifyBlock_StatefulWithinCall(t *testing.T) {
	// The second segment sees the type assigned to the first, not the
	// caller-supplied previous type.
	lines := ClassifyBlock("JOHN\nFine by me.", models.LineAction)

	require.Len(t, lines, 2)
	assert.Equal(t, models.LineCharacter, lines[0].Type)
	assert.Equal(t, models.LineDialogue, lines[1].Type)
}

func TestClassifyBlock_Deterministic(t *testing.T) {
	input := "INT. LAB - NIGHT\nDANA\n(quietly)\nIt worked.\nShe turns to the monitor."

	first := ClassifyBlock(input, "")
	second := ClassifyBlock(input, "")

	assert.Equal(t, first, second)
}
