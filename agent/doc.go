/*
Package agent is a keyword-routed image agent with session memory.

Chat classifies free text into one intent, first match wins:

	enhance     "enhance" anywhere
	variations  "variations"
	style       "style", split into "<style> style <prompt>"
	theme       "batch" or "theme"
	direct      everything else

Each branch builds requests from fixed templates and runs them through a
Runner (one image) or a BatchRunner (variations sequentially, themes in
parallel). RunChain executes a list of ChainSteps naming one of the four
ToolKinds.

SessionMemory keeps the history of every outcome and the successful ones.
SaveMemory and LoadMemory move it through a persistence.SessionStore;
loading restores history and context only.
*/
package agent
