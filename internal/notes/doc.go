// Package notes implements the summarize and extract-todos stages.
//
// Both stages read transcripts, send one chat completion per transcript and
// write a markdown document named after the transcript's full stem. Prompt
// language follows the transcript tag (English for en, German otherwise) and
// recordings whose stem contains "thesis-coaching" get coaching focused
// summary instructions. Optional YAML front matter and a .docx copy of each
// summary are supported.
package notes
