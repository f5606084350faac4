package ocr

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// GoogleVision recognizes text with Cloud Vision DOCUMENT_TEXT_DETECTION.
// Credentials come from the environment (Application Default Credentials).
type GoogleVision struct {
	client *vision.ImageAnnotatorClient
}

func NewGoogleVision(ctx context.Context) (*GoogleVision, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &GoogleVision{client: client}, nil
}

func (g *GoogleVision) Recognize(ctx context.Context, image []byte, _ string) (string, error) {
	if len(image) == 0 {
		return "", ErrNoText
	}
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}
	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", ErrNoText
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", ErrNoText
	}
	text := strings.TrimSpace(r0.FullTextAnnotation.Text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (g *GoogleVision) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
