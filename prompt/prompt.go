// Package prompt builds the chat exchanges sent to the LLM. Builders are pure.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/utils"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a single-turn exchange: one system and one user message.
type Request struct {
	Messages []Message
}

// TruncationNotice is appended to a transcript cut to fit the budget.
const TruncationNotice = " [transcript truncated]"

const (
	summarizeSystem = "You are a helpful assistant that provides detailed summaries of YouTube video transcripts. " +
		"Your summaries should be comprehensive and cover all major points discussed in the video. " +
		"Provide a flowing text summary followed by a list of key points."

	summarizeUser = "Please provide a detailed summary of the following YouTube video transcript. The summary should include:\n" +
		"1. A flowing text summary (about 3-5 sentences) of the main content without numbers or bullet points.\n" +
		"2. A list of key points covering the main ideas and topics presented in the video.\n\n" +
		"Format your response as follows:\n" +
		"Summary: [Your flowing text summary here]\n\n" +
		"Key Points:\n" +
		"- [First key point]\n" +
		"- [Second key point]\n" +
		"- [And so on...]\n\n" +
		"Here's the transcript:\n\n%s"

	answerSystem = "You are an AI assistant that answers specific questions about YouTube video content based on the provided transcript. " +
		"Your response should include two parts: " +
		"1) A brief summary (2-3 sentences) directly addressing the user's question, without any numbering. " +
		"2) A list of key points with relevant information from the transcript that helps answer the question."

	answerUser = "Here's the transcript of a YouTube video:\n\n%s\n\n" +
		"Please answer the following question about this video: %s\n\n" +
		"Provide your response in the following format:\n" +
		"Summary: [Your summary here, without any numbering]\n\n" +
		"Key Points:\n" +
		"- [First key point]\n" +
		"- [Second key point]\n" +
		"- [And so on...]"

	translateSystem = "You are a helpful assistant that translates English to %[1]s. " +
		"Provide only the translated text without any additional comments or prefixes."

	translateUser = "Translate the following text to %s:\n\n%s"
)

// Formatter applies a character budget to embedded transcripts.
// A zero MaxTranscriptChars embeds transcripts verbatim.
type Formatter struct {
	MaxTranscriptChars int
}

func NewFormatter(maxTranscriptChars int) *Formatter {
	return &Formatter{MaxTranscriptChars: maxTranscriptChars}
}

func (f *Formatter) fit(transcript string) string {
	text, _ := utils.TruncateWords(transcript, f.MaxTranscriptChars, TruncationNotice)
	return text
}

// Summarize asks for a flowing summary followed by a "Key Points:" list.
func (f *Formatter) Summarize(transcript string) Request {
	return Request{Messages: []Message{
		{Role: RoleSystem, Content: summarizeSystem},
		{Role: RoleUser, Content: fmt.Sprintf(summarizeUser, f.fit(transcript))},
	}}
}

// AnswerQuestion asks for a short answer and supporting key points.
func (f *Formatter) AnswerQuestion(transcript, question string) (Request, error) {
	const op = "Formatter.AnswerQuestion"

	if strings.TrimSpace(transcript) == "" {
		return Request{}, errors.MissingContext(op, nil, "No video transcript available. Please load a video first.")
	}
	if strings.TrimSpace(question) == "" {
		return Request{}, errors.InvalidInput(op, nil, "Question is required")
	}

	return Request{Messages: []Message{
		{Role: RoleSystem, Content: answerSystem},
		{Role: RoleUser, Content: fmt.Sprintf(answerUser, f.fit(transcript), question)},
	}}, nil
}

// Translate asks for a bare translation of text into language.
func Translate(text, language string) Request {
	return Request{Messages: []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(translateSystem, language)},
		{Role: RoleUser, Content: fmt.Sprintf(translateUser, language, text)},
	}}
}
