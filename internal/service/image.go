package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// MsgUnreadableImage is returned when an upload has an allowed extension but
// cannot be decoded.
const MsgUnreadableImage = "The uploaded file could not be read as an image."

// MsgImageDimensions is returned when an upload declares more pixels than
// the service will decode.
const MsgImageDimensions = "The uploaded image is too large. Please use a smaller photo."

// DefaultMaxImagePixels bounds the decoded size of an upload.
const DefaultMaxImagePixels = 40_000_000

// ObjectPutter is the part of the S3 client used to archive query images.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner issues temporary download links for archived objects.
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

var formats = map[string]imaging.Format{
	types.MimeJPEG: imaging.JPEG,
	types.MimePNG:  imaging.PNG,
	types.MimeGIF:  imaging.GIF,
	types.MimeBMP:  imaging.BMP,
}

// ImageService prepares query images for the recommendation service and
// archives the originals so history entries can point back at them.
type ImageService struct {
	objects   ObjectPutter
	presigner Presigner
	bucket    string
	maxSide   int
	maxPixels int64
	logger    *zerolog.Logger
}

// NewImageService creates a new ImageService instance. s3Config may be nil,
// in which case images are normalized but never archived.
func NewImageService(s3Config *config.S3Config, maxSide int, logger *zerolog.Logger) *ImageService {
	svc := newImageService(nil, nil, "", maxSide, logger)
	if s3Config != nil {
		svc.objects = s3Config.Client
		svc.presigner = s3Config
		svc.bucket = s3Config.BucketName
	}
	return svc
}

func newImageService(objects ObjectPutter, presigner Presigner, bucket string, maxSide int, logger *zerolog.Logger) *ImageService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ImageService{
		objects:   objects,
		presigner: presigner,
		bucket:    bucket,
		maxSide:   maxSide,
		maxPixels: DefaultMaxImagePixels,
		logger:    logger,
	}
}

// WithMaxPixels sets how many pixels an upload may declare before it is
// rejected without being decoded.
func (s *ImageService) WithMaxPixels(n int64) *ImageService {
	if n > 0 {
		s.maxPixels = n
	}
	return s
}

// CanArchive reports whether an object store is configured.
func (s *ImageService) CanArchive() bool {
	return s.objects != nil
}

// Normalize rejects uploads declaring more than maxPixels, then decodes the
// upload, applies EXIF orientation and shrinks it to
// fit within maxSide on both axes, re-encoding in the original format.
// Images already small enough are returned unchanged.
func (s *ImageService) Normalize(img *types.ImageQuery) error {
	format, ok := formats[img.MimeType]
	if !ok {
		return apperr.Validation(MsgUnreadableImage)
	}

	// The header is enough to size the decode; a small file can declare a huge canvas.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.ImageBytes))
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, MsgUnreadableImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > s.maxPixels {
		return apperr.Validation(MsgImageDimensions).
			WithDetails(map[string]int{"width": cfg.Width, "height": cfg.Height})
	}

	src, err := imaging.Decode(bytes.NewReader(img.ImageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, MsgUnreadableImage, err)
	}

	b := src.Bounds()
	if s.maxSide <= 0 || (b.Dx() <= s.maxSide && b.Dy() <= s.maxSide) {
		return nil
	}

	dst := imaging.Fit(src, s.maxSide, s.maxSide, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format, imaging.JPEGQuality(90)); err != nil {
		return apperr.Internal(fmt.Errorf("failed to encode resized image: %w", err)).WithOp("image.Normalize")
	}

	s.logger.Debug().
		Int("width", b.Dx()).Int("height", b.Dy()).
		Int("bytes_before", len(img.ImageBytes)).Int("bytes_after", buf.Len()).
		Msg("query image downscaled")
	img.ImageBytes = buf.Bytes()
	return nil
}

// ArchiveQueryImage uploads the query image and returns its object key.
func (s *ImageService) ArchiveQueryImage(ctx context.Context, userID string, img *types.ImageQuery) (string, error) {
	if s.objects == nil {
		return "", fmt.Errorf("image archive is not configured")
	}
	key := fmt.Sprintf("query-images/%s/%s.%s", userID, uuid.New().String(), extensionFor(img.MimeType))

	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.ImageBytes),
		ContentType: aws.String("image/" + img.MimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.logger.Debug().Str("key", key).Msg("query image archived")
	return key, nil
}

// ArchiveURL returns a temporary download link for an archived image.
func (s *ImageService) ArchiveURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.presigner == nil {
		return "", fmt.Errorf("image archive is not configured")
	}
	return s.presigner.GeneratePresignedURL(ctx, key, ttl)
}

func extensionFor(mime string) string {
	if mime == types.MimeJPEG {
		return "jpg"
	}
	return mime
}
