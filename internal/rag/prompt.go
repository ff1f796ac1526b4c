package rag

import (
	"fmt"
	"strings"
)

// NoContextMarker is the internal placeholder used when retrieval produced
// nothing. It is only ever seen by the generation model, never the user.
const NoContextMarker = "[No context provided]"

const systemInstructions = "You are an agricultural expert assistant for smallholder farmers. " +
	"Always give practical, step-by-step guidance in a warm, friendly tone. " +
	"Present every answer in a clearly structured way using short headings and bullet " +
	"points instead of long paragraphs. When context from research papers is provided, " +
	"base your core factual statements primarily on that context, but you may also add " +
	"extra practical tips and general agronomy knowledge if it will help the farmer. " +
	"Do not mention research papers, retrieval, or any internal systems. At the end of " +
	"your answer, add one short, friendly follow-up question asking if they would like " +
	"more suggestions or recommendations."

var roleNotes = map[Role]string{
	RoleFarmer: "You are answering a question from a FARMER. Focus on very practical field-level " +
		"advice: clear symptoms, step-by-step controls, safe waiting periods, and cost-effective options.",
	RoleDistributor: "You are answering a question from a DISTRIBUTOR. Focus only on transport, storage, " +
		"spoilage reduction, temperature/moisture control, and packaging. Do not give farm-level crop advice.",
}

// BuildPrompt assembles the ordered prompt segments handed to the
// generation backend: persona instructions, labeled context chunks (or the
// internal no-context marker), then the role- and use-case-tailored
// question. An absent use case contributes no segment at all.
func BuildPrompt(question string, role Role, useCase string, contexts []string) []string {
	parts := []string{
		systemInstructions,
		"\n\nCONTEXT FROM RESEARCH PAPERS:\n",
	}

	if len(contexts) > 0 {
		for i, chunk := range contexts {
			parts = append(parts, fmt.Sprintf("[Chunk %d] %s\n", i+1, chunk))
		}
	} else {
		parts = append(parts, NoContextMarker+"\n")
	}

	parts = append(parts, "\nUSER QUESTION:\n")
	parts = append(parts, buildQuestionSegment(question, role, useCase))

	return parts
}

func buildQuestionSegment(question string, role Role, useCase string) string {
	var segments []string

	if note, ok := roleNotes[role]; ok {
		segments = append(segments, note)
	}
	if useCase != "" {
		segments = append(segments, fmt.Sprintf("This question is categorized as: %s. Prioritize answering that aspect.", useCase))
	}

	segments = append(segments,
		"Answer in simple language that a non-technical farmer could understand. "+
			"Do not mention research papers, RAG, retrieval, or any internal systems.")
	segments = append(segments, "Question: "+question)

	return strings.Join(segments, "\n\n")
}
