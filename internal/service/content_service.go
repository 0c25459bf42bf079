package service

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ContentService 将模块项解析为展示标题与访问地址。
// File 类型的项走 MinIO 预签名下载地址，其余类型拼接 API 路径
type ContentService struct {
	Cfg   *config.Config
	minio *minio.Client
}

func NewContentService(cfg *config.Config) *ContentService {
	s := &ContentService{Cfg: cfg}

	if cfg.Storage.Type == util.StorageMinio {
		client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
			Secure: cfg.Storage.MinioUseSSL,
		})
		if err != nil {
			logger.Log.Error("Failed to initialize minio client", zap.Error(err))
		} else {
			s.minio = client
		}
	}

	return s
}

// HTMLURL 模块项的页面地址；SubHeader 没有页面，ExternalUrl 走重定向端点
func (s *ContentService) HTMLURL(courseID uint, item *model.ModuleItem) string {
	base := s.Cfg.App.BaseURL
	switch item.Type {
	case model.ItemSubHeader:
		return ""
	case model.ItemExternalUrl:
		return fmt.Sprintf("%s/api/courses/%d/module_item_redirect/%d", base, courseID, item.ID)
	default:
		return fmt.Sprintf("%s/courses/%d/modules/items/%d", base, courseID, item.ID)
	}
}

// ContentURL 模块项指向内容的 API 地址；无内容的类型返回空串
func (s *ContentService) ContentURL(courseID uint, item *model.ModuleItem) string {
	base := s.Cfg.App.BaseURL
	switch item.Type {
	case model.ItemAssignment:
		return fmt.Sprintf("%s/api/courses/%d/assignments/%d", base, courseID, item.ContentID)
	case model.ItemDiscussion:
		return fmt.Sprintf("%s/api/courses/%d/discussion_topics/%d", base, courseID, item.ContentID)
	case model.ItemPage:
		return fmt.Sprintf("%s/api/courses/%d/pages/%s", base, courseID, item.PageSlug)
	case model.ItemFile:
		return s.fileURL(item)
	default:
		return ""
	}
}

func (s *ContentService) fileURL(item *model.ModuleItem) string {
	if s.minio != nil {
		object := fmt.Sprintf("files/%d", item.ContentID)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		url, err := s.minio.PresignedGetObject(ctx, s.Cfg.Storage.MinioBucket, object, 15*time.Minute, nil)
		if err != nil {
			logger.Log.Error("Failed to presign file url", zap.Error(err), zap.Uint("file", item.ContentID))
		} else {
			return url.String()
		}
	}
	return fmt.Sprintf("%s/api/files/%d", s.Cfg.App.BaseURL, item.ContentID)
}
