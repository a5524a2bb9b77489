package tapsdk

import (
	"go.uber.org/zap"

	"github.com/roach88/tapsdk/sys"
)

// CloudSave issues asynchronous cloud-save requests. Each method returns
// once the request is queued by the SDK; the response arrives later as the
// matching CloudSave* event carrying the same request id.
type CloudSave struct {
	sdk    *SDK
	handle sys.CloudSaveHandle
}

// CreateRequest describes a new cloud save. Extra and CoverFilePath are
// optional; empty means absent.
type CreateRequest struct {
	Name          string
	Summary       string
	Extra         string
	Playtime      uint32
	DataFilePath  string
	CoverFilePath string
}

// UpdateRequest replaces the contents of the save identified by UUID.
type UpdateRequest struct {
	UUID string
	CreateRequest
}

// CloudSave returns the cloud-save interface of an initialized SDK.
func (s *SDK) CloudSave() (*CloudSave, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	h := s.lib.CloudSave()
	if h == 0 {
		return nil, &Error{Code: ErrCodeNullPointer, Message: "TapCloudSave returned null"}
	}
	return &CloudSave{sdk: s, handle: h}, nil
}

// List requests the metadata of every save.
func (c *CloudSave) List(requestID int64) (err error) {
	defer c.observe("list", requestID, &err)
	if err := c.sdk.ready(); err != nil {
		return err
	}
	return rejected(c.sdk.lib.CloudSaveAsyncList(c.handle, requestID))
}

// Create uploads a new save.
func (c *CloudSave) Create(requestID int64, req CreateRequest) (err error) {
	defer c.observe("create", requestID, &err)
	if err := c.sdk.ready(); err != nil {
		return err
	}
	f, err := req.fields()
	if err != nil {
		return err
	}
	raw := sys.CloudSaveCreateRequest{
		Name:          f.name,
		Summary:       f.summary,
		Extra:         f.extra,
		Playtime:      req.Playtime,
		DataFilePath:  f.dataPath,
		CoverFilePath: f.coverPath,
	}
	return rejected(c.sdk.lib.CloudSaveAsyncCreate(c.handle, requestID, &raw))
}

// Update replaces an existing save.
func (c *CloudSave) Update(requestID int64, req UpdateRequest) (err error) {
	defer c.observe("update", requestID, &err)
	if err := c.sdk.ready(); err != nil {
		return err
	}
	if err := checkText("uuid", req.UUID); err != nil {
		return err
	}
	if err := req.wellFormed(); err != nil {
		return err
	}
	uuid, err := requiredID("uuid", req.UUID)
	if err != nil {
		return err
	}
	f, err := req.fields()
	if err != nil {
		return err
	}
	raw := sys.CloudSaveUpdateRequest{
		UUID:          uuid,
		Name:          f.name,
		Summary:       f.summary,
		Extra:         f.extra,
		Playtime:      req.Playtime,
		DataFilePath:  f.dataPath,
		CoverFilePath: f.coverPath,
	}
	return rejected(c.sdk.lib.CloudSaveAsyncUpdate(c.handle, requestID, &raw))
}

// Delete removes the save identified by uuid.
func (c *CloudSave) Delete(requestID int64, uuid string) (err error) {
	defer c.observe("delete", requestID, &err)
	if err := c.sdk.ready(); err != nil {
		return err
	}
	p, err := requiredID("uuid", uuid)
	if err != nil {
		return err
	}
	return rejected(c.sdk.lib.CloudSaveAsyncDelete(c.handle, requestID, p))
}

// GetData downloads the data file of a save.
func (c *CloudSave) GetData(requestID int64, uuid, fileID string) (err error) {
	defer c.observe("get_data", requestID, &err)
	if err := c.sdk.ready(); err != nil {
		return err
	}
	req, err := fileRequest(uuid, fileID)
	if err != nil {
		return err
	}
	return rejected(c.sdk.lib.CloudSaveAsyncGetData(c.handle, requestID, req))
}

// GetCover downloads the cover image of a save.
func (c *CloudSave) GetCover(requestID int64, uuid, fileID string) (err error) {
	defer c.observe("get_cover", requestID, &err)
	if err := c.sdk.ready(); err != nil {
		return err
	}
	req, err := fileRequest(uuid, fileID)
	if err != nil {
		return err
	}
	return rejected(c.sdk.lib.CloudSaveAsyncGetCover(c.handle, requestID, req))
}

func (c *CloudSave) observe(op string, requestID int64, err *error) {
	c.sdk.observer.Requested("cloudsave_"+op, *err)
	if *err != nil {
		c.sdk.logger.Debug("cloud save request failed", zap.String("op", op), zap.Int64("request_id", requestID), zap.Error(*err))
		return
	}
	c.sdk.logger.Debug("cloud save request queued", zap.String("op", op), zap.Int64("request_id", requestID))
}

func rejected(r sys.CloudSaveResult) error {
	if r == sys.CloudSaveOK {
		return nil
	}
	return &Error{Code: ErrCodeCloudSaveRejected, CloudSaveResult: r}
}

func fileRequest(uuid, fileID string) (*sys.CloudSaveGetFileRequest, error) {
	if err := checkText("uuid", uuid); err != nil {
		return nil, err
	}
	if err := checkText("file id", fileID); err != nil {
		return nil, err
	}
	u, err := requiredID("uuid", uuid)
	if err != nil {
		return nil, err
	}
	f, err := requiredID("file id", fileID)
	if err != nil {
		return nil, err
	}
	return &sys.CloudSaveGetFileRequest{UUID: u, FileID: f}, nil
}
