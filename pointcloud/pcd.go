package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/depthcloud/utils"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
)

const (
	pcdFieldsPoint       = "x y z"
	pcdFieldsPointNormal = "x y z normal_x normal_y normal_z"
)

// ToPCD writes the records as an unorganized PCD cloud.
func ToPCD(records Records, out io.Writer, outputType PCDType) error {
	withNormals := records.HasNormals()
	fields, fieldNames := 3, pcdFieldsPoint
	if withNormals {
		fields, fieldNames = 6, pcdFieldsPointNormal
	}

	var data string
	switch outputType {
	case PCDAscii:
		data = "ascii"
	case PCDBinary:
		data = "binary"
	default:
		return errors.Errorf("unsupported pcd type %d", outputType)
	}

	_, err := fmt.Fprintf(out, "VERSION .7\n"+
		"FIELDS %s\n"+
		"SIZE %s\n"+
		"TYPE %s\n"+
		"COUNT %s\n"+
		"WIDTH %d\n"+
		"HEIGHT 1\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n"+
		"DATA %s\n",
		fieldNames,
		strings.TrimSpace(strings.Repeat("4 ", fields)),
		strings.TrimSpace(strings.Repeat("F ", fields)),
		strings.TrimSpace(strings.Repeat("1 ", fields)),
		records.Len(),
		records.Len(),
		data)
	if err != nil {
		return err
	}

	values := make([]float64, fields)
	buf := make([]byte, 4*fields)
	for i, p := range records.Points {
		values[0], values[1], values[2] = p.X, p.Y, p.Z
		if withNormals {
			n := records.Normals[i]
			values[3], values[4], values[5] = n.X, n.Y, n.Z
		}
		switch outputType {
		case PCDBinary:
			for j, v := range values {
				binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(float32(v)))
			}
			_, err = out.Write(buf)
		case PCDAscii:
			text := make([]string, fields)
			for j, v := range values {
				text[j] = utils.Float32Text(v)
			}
			_, err = io.WriteString(out, strings.Join(text, " ")+"\n")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type pcdHeader struct {
	fields int
	width  uint64
	height uint64
	points uint64
	data   PCDType
}

const pcdCommentChar = "#"

var pcdHeaderFields = []string{"VERSION", "FIELDS", "SIZE", "TYPE", "COUNT", "WIDTH", "HEIGHT", "VIEWPOINT", "POINTS", "DATA"}

func parsePCDHeaderLine(line string, index int, header *pcdHeader) error {
	var err error
	name := pcdHeaderFields[index]
	field, value, _ := strings.Cut(line, " ")
	tokens := strings.Fields(value)
	if field != name {
		return errors.Errorf("line is supposed to start with %s but is %s", name, line)
	}

	switch name {
	case "VERSION":
		if value != ".7" && value != "0.7" {
			return errors.Errorf("unsupported pcd version %s", value)
		}
	case "FIELDS":
		switch strings.Join(tokens, " ") {
		case pcdFieldsPoint:
			header.fields = 3
		case pcdFieldsPointNormal:
			header.fields = 6
		default:
			return errors.Errorf("unsupported pcd fields %s", value)
		}
	case "SIZE":
		if len(tokens) != header.fields {
			return errors.New("unexpected number of fields in SIZE line")
		}
		for _, token := range tokens {
			if token != "4" {
				return errors.Errorf("unsupported SIZE field %s", token)
			}
		}
	case "TYPE":
		if len(tokens) != header.fields {
			return errors.New("unexpected number of fields in TYPE line")
		}
		for _, token := range tokens {
			if token != "F" {
				return errors.Errorf("unsupported TYPE field %s", token)
			}
		}
	case "COUNT":
		if len(tokens) != header.fields {
			return errors.New("unexpected number of fields in COUNT line")
		}
	case "WIDTH":
		header.width, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid WIDTH field %s", value)
		}
	case "HEIGHT":
		header.height, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid HEIGHT field %s", value)
		}
	case "VIEWPOINT":
		if len(tokens) != 7 {
			return errors.Errorf("unexpected number of fields in VIEWPOINT line. Expected 7, got %d", len(tokens))
		}
	case "POINTS":
		header.points, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid POINTS field %s", value)
		}
		if header.points != header.width*header.height {
			return errors.Errorf("POINTS field %d does not match WIDTH*HEIGHT %d", header.points, header.width*header.height)
		}
	case "DATA":
		switch value {
		case "ascii":
			header.data = PCDAscii
		case "binary":
			header.data = PCDBinary
		default:
			return errors.Errorf("unsupported pcd data type %s", value)
		}
	}
	return nil
}

// ReadPCD reads a PCD file written by ToPCD, or any PCD with float x y z fields and
// optional normals.
func ReadPCD(inRaw io.Reader) (Records, error) {
	header := pcdHeader{}
	in := bufio.NewReader(inRaw)
	headerLineCount := 0
	for headerLineCount < len(pcdHeaderFields) {
		line, err := in.ReadString('\n')
		if err != nil {
			return Records{}, errors.Wrapf(err, "error reading header line %d", headerLineCount)
		}
		line, _, _ = strings.Cut(line, pcdCommentChar)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := parsePCDHeaderLine(line, headerLineCount, &header); err != nil {
			return Records{}, err
		}
		headerLineCount++
	}

	records := Records{Points: make([]r3.Vector, 0, header.points)}
	if header.fields == 6 {
		records.Normals = make([]r3.Vector, 0, header.points)
	}
	values := make([]float64, header.fields)
	buf := make([]byte, 4*header.fields)
	for i := uint64(0); i < header.points; i++ {
		switch header.data {
		case PCDAscii:
			line, err := in.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return Records{}, errors.Wrapf(err, "error reading point %d", i)
			}
			tokens := strings.Fields(line)
			if len(tokens) != header.fields {
				return Records{}, errors.Errorf("unexpected number of fields in point %d", i)
			}
			for j, token := range tokens {
				values[j], err = strconv.ParseFloat(token, 64)
				if err != nil {
					return Records{}, errors.Wrapf(err, "invalid point %d field %s", i, token)
				}
			}
		case PCDBinary:
			if _, err := io.ReadFull(in, buf); err != nil {
				return Records{}, errors.Wrapf(err, "error reading point %d", i)
			}
			for j := range values {
				values[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:])))
			}
		}
		records.Points = append(records.Points, r3.Vector{X: values[0], Y: values[1], Z: values[2]})
		if header.fields == 6 {
			records.Normals = append(records.Normals, r3.Vector{X: values[3], Y: values[4], Z: values[5]})
		}
	}
	return records, nil
}
