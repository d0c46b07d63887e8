package dam

import (
	"fmt"
	"net/url"

	"github.com/jacobsenj/canto-fal/internal/identifier"
)

// ImageURL is the media delivery base URL of an image, operators are appended to it
func (r *Repository) ImageURL(id identifier.Combined) string {
	return fmt.Sprintf("https://%s/image/%s/%s_%s/", r.cfg.MdcDomainName, r.cfg.MdcAwsAccountID, id.Scheme, id.ID)
}

// AssetURL is the media delivery URL serving the original file under downloadName
func (r *Repository) AssetURL(id identifier.Combined, downloadName string) string {
	query := url.Values{}
	query.Set("content-disposition", r.cfg.ContentDisposition)

	return fmt.Sprintf("https://%s/asset/%s/%s_%s/%s?%s",
		r.cfg.MdcDomainName, r.cfg.MdcAwsAccountID, id.Scheme, id.ID, downloadName, query.Encode())
}
