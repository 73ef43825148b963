package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ironsheep/ocr-fields/internal/acquire"
	"github.com/ironsheep/ocr-fields/internal/fields"
	"github.com/ironsheep/ocr-fields/internal/imaging"
	"github.com/ironsheep/ocr-fields/internal/ocr"
	"github.com/ironsheep/ocr-fields/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_run_fields").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool complete")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_transform":
		return s.handleImageTransform(ctx, args)
	case "ocr_recognize":
		return s.handleOCRRecognize(ctx, args)
	case "ocr_run_path":
		return s.handleOCRRunPath(ctx, args)
	case "ocr_run_field":
		return s.handleOCRRunField(ctx, args)
	case "ocr_run_fields":
		return s.handleOCRRunFields(ctx, args)
	case "transforms_list":
		return s.handleTransformsList()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

// sourceArgs selects the start image: a file, optionally cropped, or the
// screen when Path is empty.
type sourceArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region"`
}

func (s *Server) acquire(ctx context.Context, a sourceArgs) (image.Image, error) {
	return s.acquirer.Acquire(ctx, acquire.Source{File: a.Path, Region: a.Region})
}

// ocrArgs are per-call OCR overrides.
type ocrArgs struct {
	Lang    string      `json:"lang"`
	Config  string      `json:"config"`
	Nice    int         `json:"nice"`
	Timeout interface{} `json:"timeout"`
}

func (a *ocrArgs) options() (ocr.Options, error) {
	if a == nil {
		return ocr.Options{}, nil
	}
	timeout, err := ocr.ParseTimeout(a.Timeout)
	if err != nil {
		return ocr.Options{}, err
	}
	return ocr.Options{
		Language: a.Lang,
		Config:   a.Config,
		Nice:     a.Nice,
		Timeout:  timeout,
	}, nil
}

func validateSteps(steps []fields.Step) error {
	for i, step := range steps {
		if strings.TrimSpace(step.Name) == "" {
			return fmt.Errorf("step %d has no name", i+1)
		}
	}
	return nil
}

// fieldsArgs locate a fields file, by path or inline.
type fieldsArgs struct {
	FieldsFile string `json:"fields_file"`
	Fields     string `json:"fields"`
}

func (a fieldsArgs) load() (*fields.FieldSet, error) {
	switch {
	case a.FieldsFile != "":
		return fields.Load(a.FieldsFile)
	case strings.TrimSpace(a.Fields) != "":
		return fields.Parse([]byte(a.Fields))
	default:
		return nil, errors.New("either fields_file or fields is required")
	}
}

// === Result shapes ===

// pathOutput is a PathResult with its error and image made serialisable.
type pathOutput struct {
	pipeline.PathResult
	Error   string                `json:"error,omitempty"`
	Encoded *imaging.EncodedImage `json:"image,omitempty"`
}

func newPathOutput(r pipeline.PathResult, includeImage bool) (*pathOutput, error) {
	out := &pathOutput{PathResult: r}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if includeImage && r.Image != nil {
		enc, err := imaging.EncodeBase64PNG(r.Image)
		if err != nil {
			return nil, err
		}
		out.Encoded = enc
	}
	return out, nil
}

type fieldOutput struct {
	Field   string                `json:"field"`
	Winner  string                `json:"winner,omitempty"`
	Ranking []string              `json:"ranking"`
	Paths   []*pathOutput         `json:"paths"`
	Encoded *imaging.EncodedImage `json:"image,omitempty"`
}

// newFieldOutput reports every path; with includeImage the winner's image is
// attached to the field.
func newFieldOutput(r pipeline.FieldResult, includeImage bool) (*fieldOutput, error) {
	out := &fieldOutput{Field: r.Field, Ranking: make([]string, 0, len(r.Ranked))}
	for _, pr := range r.Ranked {
		out.Ranking = append(out.Ranking, pr.Path)
	}
	for _, pr := range r.Paths {
		po, err := newPathOutput(pr, false)
		if err != nil {
			return nil, err
		}
		out.Paths = append(out.Paths, po)
	}

	winner, ok := r.Winner()
	if !ok {
		return out, nil
	}
	out.Winner = winner.Path
	if includeImage {
		enc, err := imaging.EncodeBase64PNG(winner.Image)
		if err != nil {
			return nil, err
		}
		out.Encoded = enc
	}
	return out, nil
}

type runOutput struct {
	RunID    string                `json:"run_id"`
	Text     string                `json:"text"`
	Score    float64               `json:"score"`
	Found    bool                  `json:"found"`
	Warnings []string              `json:"warnings,omitempty"`
	Fields   []*fieldOutput        `json:"fields"`
	Encoded  *imaging.EncodedImage `json:"image,omitempty"`
}

// === Tool handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageTransformArgs struct {
	sourceArgs
	Steps []fields.Step `json:"steps"`
}

type transformOutput struct {
	*imaging.EncodedImage
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleImageTransform(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageTransformArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := validateSteps(a.Steps); err != nil {
		return nil, err
	}
	img, err := s.acquire(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}

	out, warnings, err := s.pipeline.Transform(img, a.Steps)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodeBase64PNG(out)
	if err != nil {
		return nil, err
	}
	return &transformOutput{EncodedImage: enc, Warnings: warnings}, nil
}

type ocrRecognizeArgs struct {
	sourceArgs
	OCR *ocrArgs `json:"ocr"`
}

func (s *Server) handleOCRRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrRecognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.OCR.options()
	if err != nil {
		return nil, err
	}
	img, err := s.acquire(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}
	return s.pipeline.WithOCR(opts).Recognize(ctx, img)
}

type ocrRunPathArgs struct {
	sourceArgs
	Name         string        `json:"name"`
	Steps        []fields.Step `json:"steps"`
	OCR          *ocrArgs      `json:"ocr"`
	IncludeImage bool          `json:"include_image"`
}

func (s *Server) handleOCRRunPath(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrRunPathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := validateSteps(a.Steps); err != nil {
		return nil, err
	}
	opts, err := a.OCR.options()
	if err != nil {
		return nil, err
	}
	if a.Name == "" {
		a.Name = "path"
	}
	img, err := s.acquire(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}

	res := s.pipeline.WithOCR(opts).RunPath(ctx, fields.Path{Name: a.Name, Steps: a.Steps}, img)
	return newPathOutput(res, a.IncludeImage)
}

type ocrRunFieldArgs struct {
	sourceArgs
	fieldsArgs
	Field        string `json:"field"`
	IncludeImage bool   `json:"include_image"`
}

func (s *Server) handleOCRRunField(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrRunFieldArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	set, err := a.load()
	if err != nil {
		return nil, err
	}

	field := set.Fields[0]
	if a.Field != "" {
		var ok bool
		if field, ok = set.Field(a.Field); !ok {
			return nil, fmt.Errorf("field %q not found", a.Field)
		}
	}

	img, err := s.acquire(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}
	res := s.pipeline.WithOCR(set.OCR).RunField(ctx, field, img)
	return newFieldOutput(res, a.IncludeImage)
}

type ocrRunFieldsArgs struct {
	sourceArgs
	fieldsArgs
	IncludeImage bool `json:"include_image"`
}

func (s *Server) handleOCRRunFields(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrRunFieldsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	set, err := a.load()
	if err != nil {
		return nil, err
	}
	img, err := s.acquire(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.RunFields(ctx, set, img)
	if err != nil {
		return nil, err
	}

	out := &runOutput{
		RunID:    res.RunID,
		Text:     res.Text,
		Score:    res.Score,
		Found:    res.Found,
		Warnings: res.Warnings,
	}
	for _, fr := range res.Fields {
		fo, err := newFieldOutput(fr, false)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, fo)
	}
	if a.IncludeImage {
		if out.Encoded, err = imaging.EncodeBase64PNG(res.Image); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Server) handleTransformsList() (interface{}, error) {
	return map[string]interface{}{
		"transforms": s.pipeline.Registry().Names(),
	}, nil
}
