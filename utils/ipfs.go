package utils

import (
	"io"
	"strings"

	shell "github.com/ipfs/go-ipfs-api"
)

var ipfs *shell.Shell

func GetIPFSClient() *shell.Shell {
	if ipfs == nil {
		addr := GetENV("IPFS_API")
		if addr == "" {
			addr = "localhost:5001"
		}
		ipfs = shell.NewShell(addr)
	}
	return ipfs
}

// MemoUpload pins a sealed memo and returns its CID for the announcement
// metadata.
func MemoUpload(sealed string) (string, error) {
	return GetIPFSClient().Add(strings.NewReader(sealed))
}

// MemoDownload fetches a sealed memo by CID.
func MemoDownload(cid string) (string, error) {
	rc, err := GetIPFSClient().Cat(cid)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
