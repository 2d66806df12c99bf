package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/genai-go/genai"
)

const generateLongDesc string = `Generate a response to a prompt.

The prompt is the arguments joined by spaces, or standard input when no
argument (or a single "-") is given. Files attached with --file are sent as
inline data after the prompt.

Examples:
  genai generate "Write a haiku about Go"
  genai generate --file cat.png "What is in this picture?"
  cat notes.txt | genai generate --json`

// promptFlags are shared by the commands that send contents.
type promptFlags struct {
	files           []string
	temperature     float32
	maxOutputTokens int32
	json            bool
}

func (f *promptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "attach a file as inline data (repeatable)")
	cmd.Flags().Float32Var(&f.temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().Int32Var(&f.maxOutputTokens, "max-output-tokens", 0, "maximum number of tokens to generate")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the full response as JSON")
}

// modelOptions returns the generation overrides given on the command line.
func (f *promptFlags) modelOptions(cmd *cobra.Command, sess *session) []genai.ModelOption {
	temperature := cmd.Flags().Changed("temperature")
	maxTokens := cmd.Flags().Changed("max-output-tokens")
	if !temperature && !maxTokens {
		return nil
	}

	generation := genai.GenerationConfig{}
	if base := generationConfig(sess.cfg.Generation); base != nil {
		generation = *base
	}
	if temperature {
		generation.Temperature = genai.Ptr(f.temperature)
	}
	if maxTokens {
		generation.MaxOutputTokens = genai.Ptr(f.maxOutputTokens)
	}
	return []genai.ModelOption{genai.WithGenerationConfig(generation)}
}

// parts builds the request parts from args, stdin and the attached files.
func (f *promptFlags) parts(cmd *cobra.Command, args []string) ([]genai.Part, error) {
	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return nil, err
	}

	parts := []genai.Part{genai.Text(prompt)}
	for _, path := range f.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		parts = append(parts, genai.Data(detectMIMEType(data), data))
	}
	return parts, nil
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("empty prompt")
	}
	return prompt, nil
}

// detectMIMEType sniffs data, dropping parameters such as the charset.
func detectMIMEType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if index := strings.IndexByte(mimeType, ';'); index >= 0 {
		mimeType = mimeType[:index]
	}
	return mimeType
}

func newGenerateCmd(sess *session) *cobra.Command {
	flags := &promptFlags{}
	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate a response to a prompt",
		Long:  generateLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := flags.parts(cmd, args)
			if err != nil {
				return err
			}
			model, err := sess.newModel(flags.modelOptions(cmd, sess)...)
			if err != nil {
				return err
			}

			ctx, cancel := sess.requestContext(cmd)
			defer cancel()

			response, err := model.GenerateContent(ctx, parts...)
			if err != nil {
				return explain(err)
			}
			if flags.json {
				return writeJSON(cmd.OutOrStdout(), response)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), response.Text())
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newStreamCmd(sess *session) *cobra.Command {
	flags := &promptFlags{}
	cmd := &cobra.Command{
		Use:   "stream [prompt...]",
		Short: "Stream a response to a prompt as it is generated",
		Long: `Stream a response to a prompt, printing text as each chunk arrives.

With --json every chunk is printed as it arrives, one JSON document each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := flags.parts(cmd, args)
			if err != nil {
				return err
			}
			model, err := sess.newModel(flags.modelOptions(cmd, sess)...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stream := model.GenerateContentStream(commandContext(cmd), parts...)
			defer stream.Close()

			for chunk, err := range stream.Iter() {
				if err != nil {
					if !flags.json {
						fmt.Fprintln(out)
					}
					return explain(err)
				}
				if flags.json {
					if err := writeJSON(out, chunk); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprint(out, chunk.Text()); err != nil {
					return err
				}
			}
			if !flags.json {
				_, err = fmt.Fprintln(out)
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newCountTokensCmd(sess *session) *cobra.Command {
	flags := &promptFlags{}
	cmd := &cobra.Command{
		Use:   "count-tokens [prompt...]",
		Short: "Count the tokens of a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := flags.parts(cmd, args)
			if err != nil {
				return err
			}
			model, err := sess.newModel()
			if err != nil {
				return err
			}

			ctx, cancel := sess.requestContext(cmd)
			defer cancel()

			count, err := model.CountTokens(ctx, parts...)
			if err != nil {
				return explain(err)
			}
			if flags.json {
				return writeJSON(cmd.OutOrStdout(), count)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), count.TotalTokens)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&flags.files, "file", "f", nil, "attach a file as inline data (repeatable)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the response as JSON")
	return cmd
}

// explain adds a hint to rejected responses the user can act on.
func explain(err error) error {
	var rejected *genai.GenerateContentError
	if !errors.As(err, &rejected) {
		return err
	}
	switch {
	case errors.Is(err, genai.ErrPromptBlocked):
		return fmt.Errorf("%w (rephrase the prompt)", err)
	case errors.Is(err, genai.ErrResponseStoppedEarly) && rejected.FinishReason == genai.FinishReasonMaxTokens:
		return fmt.Errorf("%w (raise --max-output-tokens)", err)
	default:
		return err
	}
}
