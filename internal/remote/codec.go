package remote

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
)

func decodeProducts(data []byte) ([]catalog.Product, error) {
	d := jx.DecodeBytes(data)
	var products []catalog.Product
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func decodeOneProduct(data []byte) (catalog.Product, error) {
	p, err := decodeProduct(jx.DecodeBytes(data))
	if err != nil {
		return catalog.Product{}, errors.Wrap(err, "decode product")
	}
	return p, nil
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			p.ID = v
			return err
		case "title":
			v, err := d.Str()
			p.Title = v
			return err
		case "price":
			return decodePrice(d, &p.Price)
		case "description":
			return decodeNullableStr(d, &p.Description)
		case "images":
			return d.Arr(func(d *jx.Decoder) error {
				// Image entries are occasionally malformed upstream;
				// keep whatever string arrives.
				s, err := d.Str()
				if err != nil {
					return err
				}
				p.Images = append(p.Images, s)
				return nil
			})
		case "category":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "id":
					v, err := d.Int64()
					p.Category.ID = v
					return err
				case "name":
					v, err := d.Str()
					p.Category.Name = v
					return err
				default:
					return d.Skip()
				}
			})
		case "creationAt":
			return decodeTime(d, &p.CreatedAt)
		case "updatedAt":
			return decodeTime(d, &p.UpdatedAt)
		default:
			return d.Skip()
		}
	})
	return p, err
}

func decodeCategories(data []byte) ([]catalog.Category, error) {
	d := jx.DecodeBytes(data)
	var categories []catalog.Category
	if err := d.Arr(func(d *jx.Decoder) error {
		var c catalog.Category
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "id":
				v, err := d.Int64()
				c.ID = v
				return err
			case "name":
				v, err := d.Str()
				c.Name = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		categories = append(categories, c)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	return categories, nil
}

// decodePrice accepts a JSON number, a quoted number, or null. A null
// or unparsable price decodes as zero.
func decodePrice(d *jx.Decoder, out *decimal.Decimal) error {
	switch d.Next() {
	case jx.Null:
		*out = decimal.Zero
		return d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			*out = decimal.Zero
			return nil
		}
		*out = v
		return nil
	default:
		n, err := d.Num()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(string(n))
		if err != nil {
			*out = decimal.Zero
			return nil
		}
		*out = v
		return nil
	}
}

func decodeNullableStr(d *jx.Decoder, out *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	v, err := d.Str()
	*out = v
	return err
}

// decodeTime tolerates malformed timestamps: they decode as the zero
// time instead of failing the whole record.
func decodeTime(d *jx.Decoder, out *time.Time) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	if t, perr := time.Parse(time.RFC3339, s); perr == nil {
		*out = t
	}
	return nil
}

func encodeUpdateRequest(r UpdateRequest) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(r.Title) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(r.Price.String())) })
		e.Field("description", func(e *jx.Encoder) { e.Str(r.Description) })
		e.Field("images", func(e *jx.Encoder) { encodeImages(e, r.Images) })
	})
	return e.Bytes()
}

func encodeCreateRequest(r CreateRequest) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(r.Title) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(r.Price.String())) })
		e.Field("description", func(e *jx.Encoder) { e.Str(r.Description) })
		e.Field("categoryId", func(e *jx.Encoder) { e.Int64(r.CategoryID) })
		e.Field("images", func(e *jx.Encoder) { encodeImages(e, r.Images) })
	})
	return e.Bytes()
}

func encodeImages(e *jx.Encoder, images []string) {
	e.Arr(func(e *jx.Encoder) {
		for _, u := range images {
			e.Str(u)
		}
	})
}
