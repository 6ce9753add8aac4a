/*
Package blockmentor is the backend of a reflective-learning mentor for
Music Blocks projects.

A project is a JSON list of visual-programming blocks. The service turns it
into a textual flowchart (package flowchart), asks a reasoning model to
describe the algorithm it implements, and then runs short chats in which
one of several mentor personas questions the learner about their work.

# Operations

  - Flowchart converts project code to flowchart lines.
  - Describe returns a numbered algorithm and a guess at the project's use.
  - DescribeUpdate does the same for a new version of a project, or
    returns Unchanged when the flowchart is identical.
  - Chat answers one learner turn, optionally grounded on documentation
    found by package retrieval.
  - Analyze summarizes what a learner got out of a conversation.

# Usage

	svc := blockmentor.New(
	    blockmentor.WithChatLLM(llm.NewGemini("gemini-2.0-flash", llm.WithAPIKey(key)), "gemini-2.0-flash"),
	    blockmentor.WithReasoningLLM(llm.NewGemini("gemini-2.5-flash", llm.WithAPIKey(key)), "gemini-2.5-flash"),
	)
	desc, err := svc.Describe(ctx, projectJSON)

# Errors

Request problems are reported with the sentinels ErrEmptyQuery,
ErrUnknownMentor, ErrUnknownRole and ErrInvalidProject (see IsClientError).
Upstream failures are wrapped in *StageError naming the stage that failed.
Retrieval failures are logged and the chat continues without context.
*/
package blockmentor
