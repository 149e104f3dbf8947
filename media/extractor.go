package media

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"os"

	"gocv.io/x/gocv"
)

var (
	// ErrNoFace indicates the detector found no face in the supplied image
	ErrNoFace = errors.New("no face detected")
	// ErrExtractorDisabled indicates the DNN models are not loaded
	ErrExtractorDisabled = errors.New("face extraction is disabled")
	// ErrInvalidImage indicates the payload could not be decoded
	ErrInvalidImage = errors.New("invalid image")
)

const (
	detectionConfidenceThreshold = 0.5
	embedInputSize               = 112
)

// FaceExtractor turns an image into a fixed-length face embedding using a
// DNN face detector (SSD) followed by an embedding network (ArcFace-style).
// When the model files are missing it stays disabled and Extract fails with
// ErrExtractorDisabled; the vector-only API endpoints keep working.
type FaceExtractor struct {
	detectNet gocv.Net
	embedNet  gocv.Net
	enabled   bool
	dim       int
}

// NewFaceExtractor loads the detection and embedding networks. Missing or
// unreadable model files disable the extractor instead of failing startup.
func NewFaceExtractor(detectConfigPath, detectModelPath, embedModelPath string, dim int) *FaceExtractor {
	if detectConfigPath == "" || detectModelPath == "" || embedModelPath == "" {
		log.Println("extractor: model path is empty, disabling face extraction")
		return &FaceExtractor{dim: dim}
	}
	for _, path := range []string{detectConfigPath, detectModelPath, embedModelPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("extractor: model file does not exist: %s, disabling face extraction", path)
			return &FaceExtractor{dim: dim}
		}
	}

	detectNet := gocv.ReadNet(detectModelPath, detectConfigPath)
	if detectNet.Empty() {
		log.Printf("extractor: failed to load detection model %s", detectModelPath)
		return &FaceExtractor{dim: dim}
	}

	embedNet := gocv.ReadNet(embedModelPath, "")
	if embedNet.Empty() {
		log.Printf("extractor: failed to load embedding model %s", embedModelPath)
		detectNet.Close()
		return &FaceExtractor{dim: dim}
	}

	for _, net := range []*gocv.Net{&detectNet, &embedNet} {
		if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
			log.Printf("extractor: failed to set backend: %v", err)
		}
		if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
			log.Printf("extractor: failed to set target: %v", err)
		}
	}

	log.Println("extractor: loaded face detection and embedding models")
	return &FaceExtractor{detectNet: detectNet, embedNet: embedNet, enabled: true, dim: dim}
}

// Enabled reports whether the DNN models are loaded
func (e *FaceExtractor) Enabled() bool {
	return e != nil && e.enabled
}

func (e *FaceExtractor) Close() {
	if e.Enabled() {
		e.detectNet.Close()
		e.embedNet.Close()
		e.enabled = false
		log.Println("extractor: closed networks")
	}
}

// Extract decodes the image, detects the most confident face and returns its
// embedding vector
func (e *FaceExtractor) Extract(imageBytes []byte) ([]float32, error) {
	if !e.Enabled() {
		return nil, ErrExtractorDisabled
	}

	img, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return nil, ErrInvalidImage
	}
	defer img.Close()

	region, ok := e.detectBestFace(img)
	if !ok {
		return nil, ErrNoFace
	}

	face := img.Region(region)
	defer face.Close()

	embedding := e.embed(face)
	if len(embedding) != e.dim {
		return nil, fmt.Errorf("embedding model produced %d values, expected %d", len(embedding), e.dim)
	}
	return embedding, nil
}

// detectBestFace runs the SSD detector and returns the bounding box of the
// most confident detection above the confidence threshold
func (e *FaceExtractor) detectBestFace(img gocv.Mat) (image.Rectangle, bool) {
	imgWidth := float32(img.Cols())
	imgHeight := float32(img.Rows())

	blob := gocv.BlobFromImage(img, 1.0, image.Pt(300, 300), gocv.NewScalar(104.0, 177.0, 123.0, 0), false, false)
	defer blob.Close()

	e.detectNet.SetInput(blob, "")
	detections := e.detectNet.Forward("")
	defer detections.Close()

	// the SSD output is [1, 1, N, 7]; reshape to [N, 7] for row access
	sizes := detections.Size()
	if len(sizes) != 4 || sizes[2] == 0 {
		return image.Rectangle{}, false
	}
	numDetections := sizes[2]
	data := detections.Reshape(1, numDetections)
	defer data.Close()

	var best image.Rectangle
	var bestConfidence float32
	for i := 0; i < numDetections; i++ {
		confidence := data.GetFloatAt(i, 2)
		if confidence < detectionConfidenceThreshold || confidence <= bestConfidence {
			continue
		}

		x1 := int(data.GetFloatAt(i, 3) * imgWidth)
		y1 := int(data.GetFloatAt(i, 4) * imgHeight)
		x2 := int(data.GetFloatAt(i, 5) * imgWidth)
		y2 := int(data.GetFloatAt(i, 6) * imgHeight)

		rect := image.Rect(x1, y1, x2, y2).Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
		if rect.Empty() {
			continue
		}
		best = rect
		bestConfidence = confidence
	}

	return best, bestConfidence >= detectionConfidenceThreshold
}

// embed preprocesses the face region and runs the embedding network
func (e *FaceExtractor) embed(face gocv.Mat) []float32 {
	// ArcFace expects RGB input
	rgb := gocv.NewMat()
	gocv.CvtColor(face, &rgb, gocv.ColorBGRToRGB)
	defer rgb.Close()

	resized := gocv.NewMat()
	gocv.Resize(rgb, &resized, image.Pt(embedInputSize, embedInputSize), 0, 0, gocv.InterpolationLinear)
	defer resized.Close()

	blob := gocv.BlobFromImage(resized, 1.0/255.0, image.Pt(embedInputSize, embedInputSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.embedNet.SetInput(blob, "")
	output := e.embedNet.Forward("")
	defer output.Close()

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	embedding := make([]float32, flattened.Cols())
	for i := range embedding {
		embedding[i] = flattened.GetFloatAt(0, i)
	}

	return normalizeEmbedding(embedding)
}

// normalizeEmbedding scales the vector to unit length so cosine scores of
// self-matches land at 1.0
func normalizeEmbedding(embedding []float32) []float32 {
	var sum float64
	for _, v := range embedding {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return embedding
	}
	for i := range embedding {
		embedding[i] = float32(float64(embedding[i]) / norm)
	}
	return embedding
}
